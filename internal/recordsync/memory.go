package recordsync

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used in tests and when no database
// is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	shipments     map[string]map[string]string
	deliveryNotes map[string]map[string]string
	tokens        map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments:     make(map[string]map[string]string),
		deliveryNotes: make(map[string]map[string]string),
		tokens:        make(map[string]string),
	}
}

// SetShipmentField sets one whitelisted field on a shipment record.
func (s *MemoryStore) SetShipmentField(ctx context.Context, shipmentName, field, value string) error {
	if err := checkShipmentField(field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.shipments[shipmentName]
	if !ok {
		record = make(map[string]string)
		s.shipments[shipmentName] = record
	}
	record[field] = value
	return nil
}

// SetDeliveryNoteField sets one whitelisted field on a delivery note record.
func (s *MemoryStore) SetDeliveryNoteField(ctx context.Context, noteName, field, value string) error {
	if err := checkDeliveryNoteField(field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.deliveryNotes[noteName]
	if !ok {
		record = make(map[string]string)
		s.deliveryNotes[noteName] = record
	}
	record[field] = value
	return nil
}

// LoadToken returns the stored token for a carrier, empty when absent.
func (s *MemoryStore) LoadToken(ctx context.Context, carrierName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[carrierName], nil
}

// SaveToken stores a carrier auth token.
func (s *MemoryStore) SaveToken(ctx context.Context, carrierName string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[carrierName] = token
	return nil
}

// ShipmentField reads back a shipment field, for tests.
func (s *MemoryStore) ShipmentField(shipmentName, field string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.shipments[shipmentName]
	if !ok {
		return "", false
	}
	value, ok := record[field]
	return value, ok
}

// DeliveryNoteField reads back a delivery note field, for tests.
func (s *MemoryStore) DeliveryNoteField(noteName, field string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.deliveryNotes[noteName]
	if !ok {
		return "", false
	}
	value, ok := record[field]
	return value, ok
}

var _ Store = (*MemoryStore)(nil)
