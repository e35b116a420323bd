package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"pcs-swap/pkg/types"
)

const (
	DefaultStorageFileName = ".pcs-swap-history.json"
)

// RecordStatus is the final status of a swap attempt
type RecordStatus string

const (
	StatusConfirmed RecordStatus = "confirmed" // Swap mined and settled
	StatusFailed    RecordStatus = "failed"    // Swap aborted the run
)

// Record is one swap attempt in the journal
type Record struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Side        types.Side   `json:"side"`
	Status      RecordStatus `json:"status"`
	TxHash      string       `json:"tx_hash,omitempty"`
	AmountIn    string       `json:"amount_in,omitempty"`
	AmountOut   string       `json:"amount_out,omitempty"`
	BlockNumber uint64       `json:"block_number,omitempty"`
	GasUsed     uint64       `json:"gas_used,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Storage is an append-only JSON journal of swap attempts.
// The trade loop never reads it back.
type Storage struct {
	filePath string
	mu       sync.RWMutex
	records  []*Record
}

// journal is the JSON structure of the storage file
type journal struct {
	Records []*Record `json:"records"`
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		// Default to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	storage := &Storage{
		filePath: filePath,
	}

	// A missing file is created on first save
	if err := storage.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return storage, nil
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}
	s.records = j.Records
	return nil
}

// saveLocked writes the journal atomically. The caller holds the lock.
func (s *Storage) saveLocked() error {
	data, err := json.MarshalIndent(journal{Records: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Add appends a record, assigning an ID and timestamp when missing
func (s *Storage) Add(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.records = append(s.records, rec)
	return s.saveLocked()
}

// AddReceipt records a confirmed swap
func (s *Storage) AddReceipt(r *types.SwapReceipt) error {
	return s.Add(&Record{
		Side:        r.Side,
		Status:      StatusConfirmed,
		TxHash:      r.TxHash.Hex(),
		AmountIn:    r.AmountIn.String(),
		AmountOut:   r.AmountOut.String(),
		BlockNumber: r.BlockNumber,
		GasUsed:     r.GasUsed,
	})
}

// AddFailure records a failed swap attempt
func (s *Storage) AddFailure(side types.Side, txHash string, err error) error {
	return s.Add(&Record{
		Side:   side,
		Status: StatusFailed,
		TxHash: txHash,
		Error:  err.Error(),
	})
}

// List returns all records, oldest first
func (s *Storage) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, len(s.records))
	copy(records, s.records)
	return records
}

// Last returns up to n of the most recent records, oldest first
func (s *Storage) Last(n int) []*Record {
	records := s.List()
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records
}

// Count returns the number of records
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// GetFilePath returns the storage file path
func (s *Storage) GetFilePath() string {
	return s.filePath
}
