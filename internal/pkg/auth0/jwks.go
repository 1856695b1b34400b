package auth0

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrNotApplicable means the token could not be verified on the
// identity-provider path and the caller should try the next credential scheme.
var ErrNotApplicable = errors.New("token not verifiable against identity provider")

// RolesClaim is the namespaced custom claim Auth0 rules attach role labels to.
const RolesClaim = "https://allumino.io/roles"

// Claims are the identity-provider token claims this service cares about.
type Claims struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Picture string   `json:"picture"`
	Roles   []string `json:"https://allumino.io/roles"`

	jwtlib.RegisteredClaims
}

// Verifier validates RS256 tokens against the provider's published key set.
// Keys are cached; a refetch is attempted at most once per minRefresh when an
// unknown kid shows up.
type Verifier struct {
	jwksURL  string
	issuer   string
	audience string

	client     *http.Client
	minRefresh time.Duration

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	lastFetch time.Time
}

func NewVerifier(domain, audience string) *Verifier {
	domain = strings.TrimSpace(domain)
	return &Verifier{
		jwksURL:    fmt.Sprintf("https://%s/.well-known/jwks.json", domain),
		issuer:     fmt.Sprintf("https://%s/", domain),
		audience:   strings.TrimSpace(audience),
		client:     &http.Client{Timeout: 5 * time.Second},
		minRefresh: time.Minute,
		keys:       map[string]*rsa.PublicKey{},
	}
}

// Verify checks signature, audience, issuer and expiry. Any failure is
// reported as ErrNotApplicable: the guard treats this path as "did not apply"
// and falls through to the service-issued scheme.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (Claims, error) {
	if v == nil || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrNotApplicable
	}

	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodRS256.Alg()}),
		jwtlib.WithAudience(v.audience),
		jwtlib.WithIssuer(v.issuer),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.keyForKid(ctx, kid)
	})
	if err != nil || tok == nil || !tok.Valid {
		return Claims{}, ErrNotApplicable
	}
	if strings.TrimSpace(c.Subject) == "" {
		return Claims{}, ErrNotApplicable
	}

	return c, nil
}

func (v *Verifier) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if k, ok := v.keys[kid]; ok {
		return k, nil
	}

	// Unknown kid: refetch the key set, rate-limited.
	if time.Since(v.lastFetch) < v.minRefresh {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	if err := v.fetchLocked(ctx); err != nil {
		return nil, err
	}
	if k, ok := v.keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown kid %q", kid)
}

type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *Verifier) fetchLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	v.lastFetch = time.Now()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks fetch failed: status=%d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks document contained no usable keys")
	}

	v.keys = keys
	return nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}

// SetJWKSURL overrides the key-set endpoint. Tests point it at a local server.
func (v *Verifier) SetJWKSURL(u string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.jwksURL = u
}

// SetIssuer overrides the expected issuer. Tests only.
func (v *Verifier) SetIssuer(iss string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issuer = iss
}
