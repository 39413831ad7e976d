// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps the saved connection string in the OS credential
// store (macOS Keychain, Windows Credential Manager, Secret Service, KWallet
// or pass). Nothing secret is ever written to the config file.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our credential store namespace.
const ServiceName = "pgshell"

// KeyDSN is the item holding the saved DSN.
const KeyDSN = "db_dsn"

// ErrNotSaved is returned by Forget when nothing was saved.
var ErrNotSaved = errors.New("no saved connection")

var (
	globalManager *Manager
	mu            sync.Mutex
)

// Manager provides thread-safe access to the saved DSN.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return newManager(ring), nil
}

func newManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the process-wide manager, opening it on first use.
// A failed open is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// backends lists the native stores tried on each OS, most preferred first.
// The encrypted-file backend is never used.
func backends(goos string) []keyring.BackendType {
	switch goos {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
}

func openRing() (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          backends(runtime.GOOS),
		KeychainTrustApplication: true,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		LibSecretCollectionName:  "login",
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, errors.New("no OS credential store available; pass the connection with --dsn or PGSHELL_DSN instead")
		}
		return nil, err
	}
	return ring, nil
}

// SaveDSN stores dsn, replacing any saved one.
func (m *Manager) SaveDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{
		Key:         KeyDSN,
		Data:        []byte(dsn),
		Label:       "pgshell connection",
		Description: "PostgreSQL connection string",
	})
}

// LoadDSN returns the saved DSN, or "" when none is saved.
func (m *Manager) LoadDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyDSN)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

// ForgetDSN removes the saved DSN. It returns ErrNotSaved when there is none.
func (m *Manager) ForgetDSN() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.ring.Get(KeyDSN); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return ErrNotSaved
		}
		return err
	}
	return m.ring.Remove(KeyDSN)
}
