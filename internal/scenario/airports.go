package scenario

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/v0xg/webqa/internal/api"
	"github.com/v0xg/webqa/internal/executor"
)

// Expectations against the public Airport Gap data set
const (
	ExpectedAirportCount = 30
	MinKIXToNRTKm        = 400
)

// ExpectedAirports are names the first page of airports must contain
var ExpectedAirports = []string{"Akureyri Airport", "St. Anthony Airport", "CFB Bagotville"}

// Airports is the part of api.AirportGapClient the airport checks use
type Airports interface {
	ListAirports(ctx context.Context) (*api.Response, error)
	CalculateDistance(ctx context.Context, from, to string) (*api.Response, error)
}

// AirportCount checks that the airport list has exactly want entries
func AirportCount(ctx context.Context, log logrus.FieldLogger, c Airports, want int) error {
	log.Info("Fetching airport list from API")
	resp, err := listAirports(ctx, c)
	if err != nil {
		return err
	}
	if got := int(resp.JSON("data.#").Int()); got != want {
		return failf("expected %d airports, but got %d", want, got)
	}
	return nil
}

// SpecificAirports checks that every name appears among the listed airports
func SpecificAirports(ctx context.Context, log logrus.FieldLogger, c Airports, names ...string) error {
	log.Info("Fetching airport list to check specific airports")
	resp, err := listAirports(ctx, c)
	if err != nil {
		return err
	}

	actual := make(map[string]bool)
	for _, n := range resp.JSON("data.#.attributes.name").Array() {
		actual[n.String()] = true
	}
	var missing []string
	for _, n := range names {
		if !actual[n] {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	log.Debugf("missing airports are %v", missing)

	if len(missing) > 0 {
		return failf("missing expected airports: %v", missing)
	}
	return nil
}

// Distance checks that the service reports more than minKm between two airports
func Distance(ctx context.Context, log logrus.FieldLogger, c Airports, from, to string, minKm float64) error {
	log.Infof("Calculating distance between %s and %s", from, to)
	resp, err := c.CalculateDistance(ctx, from, to)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return failf("expected status 200, but got %d", resp.StatusCode)
	}
	attrs := resp.JSON("data.attributes")
	if !attrs.Exists() {
		return failf("response has no data.attributes")
	}
	km := attrs.Get("kilometers")
	if !km.Exists() {
		return failf("response has no kilometers")
	}
	if km.Float() <= minKm {
		return failf("expected distance > %v km, but got %v km", minKm, km.Float())
	}
	return nil
}

func listAirports(ctx context.Context, c Airports) (*api.Response, error) {
	resp, err := c.ListAirports(ctx)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, failf("expected status 200, but got %d", resp.StatusCode)
	}
	if !resp.JSON("data").IsArray() {
		return nil, failf("response has no data list")
	}
	return resp, nil
}

// AirportSuite runs the API checks against one shared client
type AirportSuite struct {
	Client Airports
	Logger logrus.FieldLogger
}

// Steps returns the airport checks for the executor
func (s *AirportSuite) Steps() []executor.Step {
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return []executor.Step{
		{Name: "test_airport_count", Run: func(ctx context.Context) error {
			return AirportCount(ctx, log, s.Client, ExpectedAirportCount)
		}},
		{Name: "test_specific_airports", Run: func(ctx context.Context) error {
			return SpecificAirports(ctx, log, s.Client, ExpectedAirports...)
		}},
		{Name: "test_airport_distance", Run: func(ctx context.Context) error {
			return Distance(ctx, log, s.Client, "KIX", "NRT", MinKIXToNRTKm)
		}},
	}
}

// DialSuite connects to the service and returns the airport checks. When the
// service cannot be reached no check is returned, only the error.
func DialSuite(ctx context.Context, baseURL string, opts api.AirportGapOptions) (*AirportSuite, error) {
	c, err := api.DialAirportGap(ctx, baseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("airport gap client: %w", err)
	}
	return &AirportSuite{Client: c, Logger: opts.Logger}, nil
}
