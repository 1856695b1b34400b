package pagination

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params are 1-based page coordinates, validated before any store is touched.
type Params struct {
	Page  int
	Limit int
}

// Block is the pagination envelope attached to every list response.
type Block struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Parse validates raw query values. Empty strings take the defaults; anything
// non-numeric, page < 1 or limit outside [1,100] is rejected.
func Parse(pageRaw, limitRaw string) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}

	if s := strings.TrimSpace(pageRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Params{}, ErrInvalidParams
		}
		p.Page = n
	}

	if s := strings.TrimSpace(limitRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			return Params{}, ErrInvalidParams
		}
		p.Limit = n
	}

	return p, nil
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewBlock(p Params, total int64) Block {
	totalPages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		totalPages++
	}
	return Block{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages}
}
