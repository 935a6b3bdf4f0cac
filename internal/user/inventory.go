package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

var (
	// ErrIdentityNotFound indicates the requested identifier is not in the inventory.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInventoryNotFound indicates the inventory file does not exist.
	ErrInventoryNotFound = errors.New("inventory not found")

	// ErrInventoryLocked indicates another process is writing the inventory.
	ErrInventoryLocked = errors.New("inventory is locked by another process")
)

// InventoryManager provides thread-safe inventory file operations.
type InventoryManager struct {
	mu   sync.Mutex
	path string
}

// NewInventoryManager creates a manager for the inventory at path.
func NewInventoryManager(path string) *InventoryManager {
	return &InventoryManager{path: path}
}

// Path returns the inventory file path.
func (im *InventoryManager) Path() string { return im.path }

// Load reads the inventory from disk.
func (im *InventoryManager) Load() (*Inventory, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	return im.loadLocked()
}

// loadLocked reads the inventory without acquiring the lock (caller must hold it).
func (im *InventoryManager) loadLocked() (*Inventory, error) {
	data, err := os.ReadFile(im.path) //nolint:gosec // G304: path from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, im.path)
		}
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	return &inv, nil
}

// Save writes the inventory to disk. The file is replaced atomically while
// holding an advisory lock next to it.
func (im *InventoryManager) Save(inv *Inventory) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if inv.Version == 0 {
		inv.Version = CurrentInventoryVersion
	}

	dir := filepath.Dir(im.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	fl := flock.New(im.path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking inventory: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrInventoryLocked, im.path)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".inventory-*")
	if err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing inventory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	if err := os.Rename(tmp.Name(), im.path); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}

	return nil
}

// Get returns the identity with the given username.
func (im *InventoryManager) Get(username string) (*Identity, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	inv, err := im.loadLocked()
	if err != nil {
		return nil, err
	}

	for i := range inv.Identities {
		if inv.Identities[i].Username == username {
			return &inv.Identities[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, username)
}

// List returns all identities in the inventory. A missing file yields nil.
func (im *InventoryManager) List() ([]Identity, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	inv, err := im.loadLocked()
	if err != nil {
		if errors.Is(err, ErrInventoryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return inv.Identities, nil
}
