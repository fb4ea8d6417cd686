package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsMissingVolumeMount(t *testing.T) {
	cfg := &Config{RequestBudgetSeconds: 45, ProviderTimeoutSeconds: 2}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_CreatesVolumeMountIfMissing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "volume")
	cfg := &Config{VolumeMount: target, RequestBudgetSeconds: 45, ProviderTimeoutSeconds: 2}

	require.NoError(t, cfg.Validate())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestValidate_RejectsNonPositiveBudgets(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{VolumeMount: dir, RequestBudgetSeconds: 0, ProviderTimeoutSeconds: 2}
	assert.Error(t, cfg.Validate())

	cfg2 := &Config{VolumeMount: dir, RequestBudgetSeconds: 45, ProviderTimeoutSeconds: -1}
	assert.Error(t, cfg2.Validate())
}

func TestPathUnder_ResolvesWithinVolume(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{VolumeMount: dir}

	got, err := cfg.PathUnder("grader_data/lessons")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "grader_data", "lessons"), got)
}

func TestPathUnder_RejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{VolumeMount: dir}

	_, err := cfg.PathUnder("../../etc/passwd")
	assert.Error(t, err, "a path that escapes VOLUME_MOUNT must be rejected")
}

func TestRequestBudgetAndPrefetchBudget(t *testing.T) {
	cfg := &Config{RequestBudgetSeconds: 45}
	assert.Equal(t, cfg.RequestBudget()/2, cfg.PrefetchBudget())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{AppEnv: "production"}).IsDevelopment())
}
