package common

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/sirupsen/logrus"
)

// InstallIDFileName stores the anonymous installation ID between runs.
const InstallIDFileName = "install_id"

type InstallIDState struct {
	installID string
}

func NewInstallIDState() *InstallIDState {
	return &InstallIDState{}
}

func (s *InstallIDState) GetInstallID() string {
	return s.installID
}

func (s *InstallIDState) LoadFromFile(filePath string) error {
	_, err := os.Stat(filePath)

	// missing file is a soft error
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("opening install ID file: %w", err)
	}

	var contents []byte
	if contents, err = os.ReadFile(filePath); err != nil {
		return fmt.Errorf("reading from install ID file: %w", err)
	}

	// Return an install ID only if a properly formatted value is found
	installID := strings.TrimSpace(string(contents))
	if ok, err := regexp.MatchString("^[sr]_[0-9a-zA-Z]{12}$", installID); err == nil && ok {
		s.installID = installID
	} else if err != nil {
		return fmt.Errorf("checking install ID: %w", err)
	}

	return nil
}

func (s *InstallIDState) SaveConfig(filePath string) error {
	err := os.MkdirAll(filepath.Dir(filePath), 0700)
	if err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	err = os.WriteFile(filePath, []byte(s.installID), 0o600)
	if err != nil {
		return fmt.Errorf("writing the install ID: %w", err)
	}

	return nil
}

func (s *InstallIDState) EnsureInstallID() error {
	if s.installID != "" {
		return nil
	}

	if installID, err := generateUniqueInstallID(); err == nil {
		logrus.WithField("install_id", installID).Info("Created missing unique install ID")

		s.installID = installID
	} else {
		return fmt.Errorf("generating unique install ID: %w", err)
	}

	return nil
}

// generateUniqueInstallID derives a stable ID from the machine ID. The raw
// machine ID never leaves the host, only a keyed digest of the application
// name does.
func generateUniqueInstallID() (string, error) {
	const idLength = 12

	installID, err := machineid.ID()
	if err == nil && installID != "" {
		mac := hmac.New(sha256.New, []byte(installID))
		mac.Write([]byte(NAME))
		installID = hex.EncodeToString(mac.Sum(nil))
		return "s_" + installID[0:idLength], nil
	}

	// fallback to a random ID
	return generateRandomInstallID(idLength)
}

func generateRandomInstallID(idLength int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, idLength)
	max := big.NewInt(int64(len(charset)))

	for i := range b {
		r, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		b[i] = charset[r.Int64()]
	}
	return "r_" + string(b), nil
}

// InstallIDFile returns the per-user location of the install ID state.
func InstallIDFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config directory: %w", err)
	}

	return filepath.Join(dir, NAME, InstallIDFileName), nil
}

// LoadOrGenerateInstallID returns the persistent installation ID, creating
// and saving one when none exists yet. Persistence failures are soft, the ID
// is then unique to this invocation only.
func LoadOrGenerateInstallID() string {
	state := NewInstallIDState()

	filePath, err := InstallIDFile()
	if err != nil {
		logrus.Warningln("Resolving install ID location:", err)
	} else if err = state.LoadFromFile(filePath); err != nil {
		logrus.Warningln("Loading install ID:", err)
	}

	if state.GetInstallID() != "" {
		return state.GetInstallID()
	}

	if err = state.EnsureInstallID(); err != nil {
		logrus.Warningln("Generating install ID:", err)
		return ""
	}

	if filePath != "" {
		if err = state.SaveConfig(filePath); err != nil {
			logrus.Warningln("Saving install ID:", err)
		}
	}

	return state.GetInstallID()
}
