package keystore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/midnightntwrk/ledger-go/dust"
)

// seedSize is the length of every stored seed in bytes.
const seedSize = 32

// Store is a simple local-first seed store for wallet keys.
//
// Features:
// - Stores 32-byte seeds on the local filesystem (0600 seed files)
// - Derives deterministic purpose-specific seeds from a root seed
// - No external dependencies
//
// Secret-key containers derived from a stored seed are the caller's to Clear.
type Store struct {
	Directory string
}

type Entry struct {
	Name     string
	Purposes []string
}

func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".midnight", "keys"), nil
}

// Open returns a store rooted at directory, or at DefaultDirectory when
// directory is empty.
func Open(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) rootSeedPath(name string) string {
	return filepath.Join(s.Directory, name, "root.seed")
}

func (s *Store) purposeSeedPath(name, purpose string) string {
	return filepath.Join(s.Directory, name, "purposes", purpose+".seed")
}

func CheckName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in name", char)
	}
	return nil
}

func CheckPurpose(purpose string) error {
	if purpose == "" {
		return errors.New("purpose cannot be empty")
	}
	for _, char := range purpose {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '-' {
			continue
		}
		return fmt.Errorf("invalid character %q in purpose", char)
	}
	return nil
}

// ParseSeedHex decodes a 32-byte seed from hex, tolerating a 0x prefix and
// surrounding whitespace.
func ParseSeedHex(seedHex string) (dust.Seed, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return dust.Seed{}, err
	}
	if len(data) != seedSize {
		return dust.Seed{}, fmt.Errorf("expected seed length of %d bytes, got %d", seedSize, len(data))
	}
	var seed dust.Seed
	copy(seed[:], data)
	return seed, nil
}

// DerivePurposeSeed deterministically derives a purpose-specific seed from a
// root seed. Distinct purposes yield independent seeds; the root seed cannot
// be recovered from a derived one.
func DerivePurposeSeed(rootSeed dust.Seed, purpose string) (dust.Seed, error) {
	if err := CheckPurpose(purpose); err != nil {
		return dust.Seed{}, err
	}
	h := sha256.New()
	_, _ = h.Write(rootSeed[:])
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("midnight-keystore-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("purpose:"))
	_, _ = h.Write([]byte(purpose))
	var out dust.Seed
	copy(out[:], h.Sum(nil))
	return out, nil
}

func (s *Store) saveSeedToFile(filePath string, seed dust.Seed, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed[:]) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) loadSeedFromFile(filePath string) (dust.Seed, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return dust.Seed{}, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitializeRootSeed stores seed under name and returns the Dust public key it
// derives along with the file path written.
func (s *Store) InitializeRootSeed(name string, seed dust.Seed, overwrite bool) (pubHex string, filePath string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	filePath = s.rootSeedPath(name)
	if err := s.saveSeedToFile(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	pubHex, err = dustPublicKeyHex(seed)
	if err != nil {
		return "", "", err
	}
	return pubHex, filePath, nil
}

// DeriveForPurpose derives and stores a purpose seed under an existing name.
func (s *Store) DeriveForPurpose(name, purpose string, overwrite bool) (pubHex string, filePath string, err error) {
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	if err := CheckPurpose(purpose); err != nil {
		return "", "", err
	}
	rootSeed, err := s.loadSeedFromFile(s.rootSeedPath(name))
	if err != nil {
		return "", "", err
	}
	purposeSeed, err := DerivePurposeSeed(rootSeed, purpose)
	if err != nil {
		return "", "", err
	}
	filePath = s.purposeSeedPath(name, purpose)
	if err := s.saveSeedToFile(filePath, purposeSeed, overwrite); err != nil {
		return "", "", err
	}
	pubHex, err = dustPublicKeyHex(purposeSeed)
	if err != nil {
		return "", "", err
	}
	return pubHex, filePath, nil
}

// LoadSeed resolves a seed from one of: an inline hex seed, an explicit seed
// file, or a stored name with an optional purpose.
func (s *Store) LoadSeed(seedHex, name, purpose, seedFile string) (dust.Seed, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if seedFile != "" {
		return s.loadSeedFromFile(seedFile)
	}
	if name != "" {
		if err := CheckName(name); err != nil {
			return dust.Seed{}, err
		}
		if purpose == "" {
			return s.loadSeedFromFile(s.rootSeedPath(name))
		}
		if err := CheckPurpose(purpose); err != nil {
			return dust.Seed{}, err
		}
		return s.loadSeedFromFile(s.purposeSeedPath(name, purpose))
	}
	return dust.Seed{}, errors.New("no seed provided")
}

// List returns the stored names and their derived purposes, sorted.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		purposesDir := filepath.Join(s.Directory, name, "purposes")
		purposeEntries, perr := os.ReadDir(purposesDir)
		var purposes []string
		if perr == nil {
			for _, pe := range purposeEntries {
				if pe.IsDir() {
					continue
				}
				if strings.HasSuffix(pe.Name(), ".seed") {
					purposes = append(purposes, strings.TrimSuffix(pe.Name(), ".seed"))
				}
			}
			sort.Strings(purposes)
		}
		result = append(result, Entry{Name: name, Purposes: purposes})
	}
	return result, nil
}

func dustPublicKeyHex(seed dust.Seed) (string, error) {
	sk := dust.DeriveSecretKey(seed)
	defer sk.Clear()
	pk, err := sk.PublicKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(pk[:]), nil
}
