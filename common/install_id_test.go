//go:build !integration

package common

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallIDStateLoadFromFile(t *testing.T) {
	tests := map[string]struct {
		contents      string
		validateState func(t *testing.T, s *InstallIDState)
	}{
		"parse install_id": {
			contents: `
			s_c2d22f638c25
			`,
			validateState: func(t *testing.T, s *InstallIDState) {
				assert.Equal(t, "s_c2d22f638c25", s.GetInstallID())
			},
		},
		"parse empty install_id": {
			contents: "",
			validateState: func(t *testing.T, s *InstallIDState) {
				assert.Empty(t, s.GetInstallID())
			},
		},
		"parse invalid install_id": {
			contents: "foooooooor_000000000000barrrrr",
			validateState: func(t *testing.T, s *InstallIDState) {
				assert.Empty(t, s.GetInstallID())
			},
		},
		"parse valid install_id with garbage in the file header": {
			contents: `
			garbage
			r_c2d22f638c25`,
			validateState: func(t *testing.T, s *InstallIDState) {
				assert.Empty(t, s.GetInstallID())
			},
		},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			stateFile, err := os.CreateTemp("", "install_id")
			require.NoError(t, err)
			_, err = stateFile.WriteString(tt.contents)
			require.NoError(t, err)
			_ = stateFile.Close()

			defer func() { _ = os.Remove(stateFile.Name()) }()

			state := NewInstallIDState()
			err = state.LoadFromFile(stateFile.Name())
			assert.NoError(t, err)
			if tt.validateState != nil {
				tt.validateState(t, state)
			}
		})
	}
}

func TestInstallIDStateLoadFromMissingFile(t *testing.T) {
	stateFile, err := os.CreateTemp("", "install_id")
	require.NoError(t, err)
	stateFileName := stateFile.Name()
	_ = os.Remove(stateFileName)

	state := NewInstallIDState()
	err = state.LoadFromFile(stateFileName)
	assert.NoError(t, err)
	assert.Empty(t, state.GetInstallID())
}

func TestEnsureInstallID(t *testing.T) {
	tests := map[string]struct {
		contents string
		assertFn func(t *testing.T, state *InstallIDState)
	}{
		"preserves install_id": {
			contents: `
			s_c2d22f638c25
			`,
			assertFn: func(t *testing.T, state *InstallIDState) {
				assert.Equal(t, "s_c2d22f638c25", state.GetInstallID())
			},
		},
		"generates missing install_id": {
			contents: "",
			assertFn: func(t *testing.T, state *InstallIDState) {
				assert.Regexp(t, regexp.MustCompile("[rs]_[0-9a-zA-Z]{12}"), state.GetInstallID())
			},
		},
	}

	for tn, tt := range tests {
		t.Run(tn, func(t *testing.T) {
			stateFile, err := os.CreateTemp("", "install_id")
			require.NoError(t, err)
			_, err = stateFile.WriteString(tt.contents)
			require.NoError(t, err)
			_ = stateFile.Close()

			defer func() { _ = os.Remove(stateFile.Name()) }()

			state := NewInstallIDState()
			err = state.LoadFromFile(stateFile.Name())
			assert.NoError(t, err)

			err = state.EnsureInstallID()
			assert.NoError(t, err)
			if tt.assertFn != nil {
				tt.assertFn(t, state)
			}
		})
	}
}

func TestSaveInstallIDState(t *testing.T) {
	stateFile, err := os.CreateTemp("", "install_id")
	require.NoError(t, err)
	stateFileName := stateFile.Name()
	_ = stateFile.Close()

	defer func() { _ = os.Remove(stateFileName) }()

	state := NewInstallIDState()
	require.NoError(t, state.EnsureInstallID())
	err = state.SaveConfig(stateFileName)
	assert.NoError(t, err)

	buf, err := os.ReadFile(stateFileName)
	require.NoError(t, err)
	assert.Equal(t, state.GetInstallID(), string(buf))
}

func TestSaveInstallIDStateToNonFile(t *testing.T) {
	stateFileName := os.TempDir() + "/."

	state := NewInstallIDState()
	err := state.SaveConfig(stateFileName)
	assert.Error(t, err)
}
