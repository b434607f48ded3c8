package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

// CouponStore is an in-memory coupon lookup for tests and local dev.
// Codes are case-insensitive.
type CouponStore struct {
	mu      sync.RWMutex
	coupons map[string]ports.Coupon
}

// NewCouponStore creates an empty in-memory coupon store.
func NewCouponStore() *CouponStore {
	return &CouponStore{coupons: make(map[string]ports.Coupon)}
}

// Put stores or overwrites a coupon.
func (s *CouponStore) Put(coupon ports.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[strings.ToUpper(coupon.Code)] = coupon
}

// GetByCode returns the coupon for the given code.
func (s *CouponStore) GetByCode(_ context.Context, code string) (*ports.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coupon, ok := s.coupons[strings.ToUpper(code)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := coupon
	return &copy, nil
}
