package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BillFox/app/models"
	"github.com/ManuelReschke/BillFox/internal/pkg/cache"
)

const (
	ownerCacheKeyPrefix = "gateway:payment_owner:"
	ownerCacheTTL       = 24 * time.Hour
)

// CredentialStore provides read access to per-tenant gateway credentials.
type CredentialStore interface {
	ListGatewayCredentials() ([]models.GatewayCredential, error)
	GetGatewayCredentialByTenant(tenantID string) (*models.GatewayCredential, error)
}

type gormCredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore creates a credential store backed by GORM.
func NewCredentialStore(db *gorm.DB) CredentialStore {
	return &gormCredentialStore{db: db}
}

func (s *gormCredentialStore) ListGatewayCredentials() ([]models.GatewayCredential, error) {
	var creds []models.GatewayCredential
	err := s.db.Order("tenant_id").Find(&creds).Error
	return creds, err
}

func (s *gormCredentialStore) GetGatewayCredentialByTenant(tenantID string) (*models.GatewayCredential, error) {
	var cred models.GatewayCredential
	if err := s.db.Where("tenant_id = ?", tenantID).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

// PaymentFetcher is the slice of Client the locator needs.
type PaymentFetcher interface {
	FetchPayment(ctx context.Context, paymentID, accessToken string) (*Payment, error)
}

// OwnershipCache remembers which tenant owned a payment id so repeated
// deliveries skip the credential scan. Purely an optimization; misses and
// failures fall back to the scan.
type OwnershipCache interface {
	GetOwner(paymentID string) (string, bool)
	SetOwner(paymentID, tenantID string)
}

type redisOwnershipCache struct{}

// NewOwnershipCache returns the redis-backed ownership cache.
func NewOwnershipCache() OwnershipCache {
	return &redisOwnershipCache{}
}

func (redisOwnershipCache) GetOwner(paymentID string) (string, bool) {
	v, err := cache.Get(ownerCacheKeyPrefix + paymentID)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (redisOwnershipCache) SetOwner(paymentID, tenantID string) {
	if err := cache.Set(ownerCacheKeyPrefix+paymentID, tenantID, ownerCacheTTL); err != nil {
		log.Warnf("[Gateway] Failed to cache payment owner %s: %v", paymentID, err)
	}
}

// Ownership is the result of a successful owner search.
type Ownership struct {
	TenantID string
	Payment  *Payment
}

// Locator finds which tenant's credential owns an externally issued payment
// id. The public webhook endpoint serves every tenant, so the owner is
// unknown until a credential successfully fetches the payment.
type Locator struct {
	store  CredentialStore
	client PaymentFetcher
	cache  OwnershipCache
}

// NewLocator wires the locator against GORM, the env-configured client and
// the redis ownership cache.
func NewLocator(db *gorm.DB) *Locator {
	return NewLocatorWith(NewCredentialStore(db), NewClientFromEnv(), NewOwnershipCache())
}

// NewLocatorWith creates a locator from explicit collaborators. cache may be
// nil to disable ownership caching.
func NewLocatorWith(store CredentialStore, client PaymentFetcher, ownerCache OwnershipCache) *Locator {
	return &Locator{store: store, client: client, cache: ownerCache}
}

// LocateByPaymentID tries each configured credential against the gateway
// until one fetches the payment. Returns (nil, nil) when no credential claims
// it. Gateway lookups are tenant scoped, so a wrong credential yields
// ErrPaymentNotFound rather than a false positive.
func (l *Locator) LocateByPaymentID(ctx context.Context, paymentID string) (*Ownership, error) {
	if l.cache != nil {
		if tenantID, ok := l.cache.GetOwner(paymentID); ok {
			if own, err := l.tryTenant(ctx, paymentID, tenantID); err == nil && own != nil {
				return own, nil
			}
			log.Warnf("[Gateway] Cached owner %s no longer fetches payment %s, rescanning", tenantID, paymentID)
		}
	}

	creds, err := l.store.ListGatewayCredentials()
	if err != nil {
		return nil, err
	}

	for _, cred := range creds {
		payment, err := l.client.FetchPayment(ctx, paymentID, cred.AccessToken)
		if err != nil {
			if errors.Is(err, ErrPaymentNotFound) {
				continue
			}
			// Transport or gateway failure: keep trying the remaining
			// credentials, the owner may still answer.
			log.Warnf("[Gateway] Credential lookup failed for tenant %s: %v", cred.TenantID, err)
			continue
		}
		if l.cache != nil {
			l.cache.SetOwner(paymentID, cred.TenantID)
		}
		return &Ownership{TenantID: cred.TenantID, Payment: payment}, nil
	}
	return nil, nil
}

func (l *Locator) tryTenant(ctx context.Context, paymentID, tenantID string) (*Ownership, error) {
	cred, err := l.store.GetGatewayCredentialByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	payment, err := l.client.FetchPayment(ctx, paymentID, cred.AccessToken)
	if err != nil {
		return nil, err
	}
	return &Ownership{TenantID: tenantID, Payment: payment}, nil
}
