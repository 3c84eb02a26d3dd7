package domain

import (
	"context"
	"errors"
)

// Service runs the public banner pipeline. Every failure collapses to
// ErrNotFound so third-party referrers learn nothing about why a banner was
// withheld.
type Service interface {
	Serve(ctx context.Context, req Request) (string, error)
}

// Request is the extracted context of one banner request.
type Request struct {
	ProductID   string
	RefererURL  string
	CountryCode string
}

var ErrNotFound = errors.New("not_found")
