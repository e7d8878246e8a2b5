package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/techstore-sa/api/internal/domain"
	"github.com/techstore-sa/api/internal/insurance"
)

var (
	// ErrQuoteInvalidInput indicates the caller supplied invalid quote parameters.
	ErrQuoteInvalidInput = errors.New("quote: invalid input")
	// ErrQuoteUpstream indicates the insurance platform rejected or failed the quote.
	ErrQuoteUpstream = errors.New("quote: upstream failure")
)

const (
	quoteProductType     = "gr_device"
	quoteDeviceType      = "cellphone"
	defaultClaimsHistory = "0"
	defaultQuoteExcess   = "R100"
	defaultQuoteAreaCode = "0181"
)

// quoteClient abstracts the platform operations the quote service needs.
type quoteClient interface {
	CreateQuote(ctx context.Context, req insurance.QuoteRequest) ([]insurance.QuotePackage, error)
}

// QuoteCommand carries a device quote request.
type QuoteCommand struct {
	DeviceValue int64
	CoverType   domain.CoverType
}

// QuoteService obtains device insurance quote packages.
type QuoteService interface {
	CreateQuote(ctx context.Context, cmd QuoteCommand) ([]insurance.QuotePackage, error)
}

// QuoteServiceDeps wires the dependencies required by the quote service.
type QuoteServiceDeps struct {
	Insurance quoteClient
	Excess    string
	AreaCode  string
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type quoteService struct {
	insurance quoteClient
	excess    string
	areaCode  string
	logger    func(ctx context.Context, event string, fields map[string]any)
}

// NewQuoteService constructs a QuoteService validating required dependencies.
func NewQuoteService(deps QuoteServiceDeps) (QuoteService, error) {
	if deps.Insurance == nil {
		return nil, errors.New("quote service: insurance client is required")
	}

	excess := deps.Excess
	if excess == "" {
		excess = defaultQuoteExcess
	}
	areaCode := deps.AreaCode
	if areaCode == "" {
		areaCode = defaultQuoteAreaCode
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &quoteService{
		insurance: deps.Insurance,
		excess:    excess,
		areaCode:  areaCode,
		logger:    logger,
	}, nil
}

// CreateQuote validates the request and fetches quote packages from the platform.
func (s *quoteService) CreateQuote(ctx context.Context, cmd QuoteCommand) ([]insurance.QuotePackage, error) {
	if cmd.DeviceValue <= 0 {
		return nil, ErrQuoteInvalidInput
	}
	if !domain.ValidCoverType(cmd.CoverType) {
		return nil, ErrQuoteInvalidInput
	}

	packages, err := s.insurance.CreateQuote(ctx, insurance.QuoteRequest{
		Type:          quoteProductType,
		Devices:       []insurance.QuoteDevice{{DeviceType: quoteDeviceType, Value: cmd.DeviceValue}},
		CoverType:     string(cmd.CoverType),
		Excess:        s.excess,
		AreaCode:      s.areaCode,
		ClaimsHistory: defaultClaimsHistory,
	})
	if err != nil {
		s.logger(ctx, "quote.create_failed", map[string]any{
			"coverType": string(cmd.CoverType),
			"error":     err.Error(),
		})
		return nil, ErrQuoteUpstream
	}
	if len(packages) == 0 {
		s.logger(ctx, "quote.empty_response", map[string]any{
			"coverType": string(cmd.CoverType),
		})
		return nil, ErrQuoteUpstream
	}

	return packages, nil
}
