// Package enrich derives Zabbix host tags from the LMS device naming
// convention. Device names encode the device type, network layer and the
// site postal code ("rtr1-core-17132"); the postal code is geocoded to a
// city name through a Nominatim endpoint.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/models"
)

const (
	// unknownCity is the degraded tag value when geocoding fails.
	unknownCity = "unknown"

	defaultUserAgent   = "lms-zabbix-sync"
	defaultCountry     = "lt"
	defaultHTTPTimeout = 10 * time.Second

	geocodeInitialBackoff = 500 * time.Millisecond
	geocodeMaxBackoff     = 2 * time.Second
	geocodeMaxElapsed     = 8 * time.Second
)

var (
	errUnexpectedStatusCode = errors.New("unexpected status code from geocoder")
	errLocationNotFound     = errors.New("no location found for postal code")
)

var (
	nameTokens = regexp.MustCompile(`[a-zA-Z]+|\d+`)
	zipToken   = regexp.MustCompile(`^\d{5}$`)
)

// deviceTypes maps name tokens to the tag value used in Zabbix.
var deviceTypes = map[string]string{
	"rtr": "router",
	"sw":  "switch",
	"ap":  "access-point",
	"olt": "olt",
	"onu": "onu",
}

// layers is the set of recognized network layer tokens.
var layers = map[string]struct{}{
	"core":   {},
	"dist":   {},
	"agg":    {},
	"access": {},
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the geocoder settings.
type Config struct {
	Endpoint  string `json:"endpoint"`
	UserAgent string `json:"user_agent"`
	Country   string `json:"country"`
}

// Resolver derives host tags from device names. Geocoding is best-effort:
// it is retried with backoff on transient failures and degrades to an
// "unknown" city rather than failing the event.
type Resolver struct {
	config     Config
	httpClient HTTPClient
	logger     logger.Logger

	cities map[string]string // postal code -> city, filled lazily
}

// NewResolver creates a tag resolver. An empty endpoint disables the city
// lookup entirely; type and layer tags are still derived.
func NewResolver(config Config, log logger.Logger) *Resolver {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	if config.Country == "" {
		config.Country = defaultCountry
	}

	return &Resolver{
		config:     config,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log,
		cities:     make(map[string]string),
	}
}

// SetHTTPClient overrides the underlying HTTP client, used in tests.
func (r *Resolver) SetHTTPClient(client HTTPClient) {
	r.httpClient = client
}

// DeriveTags parses the device name and returns the tags to attach to
// the host. Unparseable names yield an empty tag set.
func (r *Resolver) DeriveTags(ctx context.Context, name string) []models.Tag {
	var tags []models.Tag

	devType, layer, zip := parseName(name)

	if devType != "" {
		tags = append(tags, models.Tag{Tag: "type", Value: devType})
	}

	if layer != "" {
		tags = append(tags, models.Tag{Tag: "layer", Value: layer})
	}

	if zip != "" && r.config.Endpoint != "" {
		tags = append(tags, models.Tag{Tag: "city", Value: r.cityForZip(ctx, zip)})
	}

	return tags
}

// parseName tokenizes a device name and picks out the device type, layer
// and postal code tokens. Any of the three may be absent.
func parseName(name string) (devType, layer, zip string) {
	for _, token := range nameTokens.FindAllString(name, -1) {
		if devType == "" {
			if t, ok := deviceTypes[token]; ok {
				devType = t
				continue
			}
		}

		if layer == "" {
			if _, ok := layers[token]; ok {
				layer = token
				continue
			}
		}

		if zip == "" && zipToken.MatchString(token) {
			zip = token
		}
	}

	return devType, layer, zip
}

// cityForZip resolves a postal code to a city name, caching results for
// the process lifetime. Failures degrade to the unknown sentinel.
func (r *Resolver) cityForZip(ctx context.Context, zip string) string {
	if city, ok := r.cities[zip]; ok {
		return city
	}

	city, err := r.geocode(ctx, zip)
	if err != nil {
		r.logger.Warn().Err(err).Str("postal_code", zip).Msg("Geocoding failed, tagging city as unknown")
		return unknownCity
	}

	r.cities[zip] = city

	return city
}

// nominatimPlace is the subset of the Nominatim search response we read.
type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

// geocode queries the Nominatim endpoint for the postal code, retrying
// transient failures with exponential backoff.
func (r *Resolver) geocode(ctx context.Context, zip string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = geocodeInitialBackoff
	bo.MaxInterval = geocodeMaxBackoff

	operation := func() (string, error) {
		return r.geocodeOnce(ctx, zip)
	}

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(geocodeMaxElapsed))
}

func (r *Resolver) geocodeOnce(ctx context.Context, zip string) (string, error) {
	query := url.Values{}
	query.Set("postalcode", zip)
	query.Set("countrycodes", r.config.Country)
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.Endpoint+"/search?"+query.Encode(), http.NoBody)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	req.Header.Set("User-Agent", r.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Network errors and timeouts are worth retrying.
		return "", err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			r.logger.Warn().Err(closeErr).Msg("Failed to close geocoder response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", errUnexpectedStatusCode, resp.StatusCode)

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return "", backoff.Permanent(err)
		}

		return "", err
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", backoff.Permanent(err)
	}

	if len(places) == 0 {
		return "", backoff.Permanent(errLocationNotFound)
	}

	return cityFromPlace(&places[0]), nil
}

// cityFromPlace picks the best available locality name, preferring city
// over town over village over municipality.
func cityFromPlace(place *nominatimPlace) string {
	addr := place.Address

	for _, candidate := range []string{addr.City, addr.Town, addr.Village, addr.Municipality} {
		if candidate != "" {
			return candidate
		}
	}

	return unknownCity
}
