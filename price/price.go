package price

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/utils"
)

const (
	priceUrlFormat = "https://api.coingecko.com/api/v3/simple/price?ids=%s&vs_currencies=usd"
	cacheTtl       = 60 * time.Second
)

// Oracle looks up a token's USD price on coingecko, caching results for a
// minute.
type Oracle struct {
	cached func() (decimal.Decimal, error)
}

func NewOracle(symbol string) *Oracle {
	return newOracle(fmt.Sprintf(priceUrlFormat, symbol), symbol, cacheTtl)
}

func newOracle(url, symbol string, ttl time.Duration) *Oracle {
	client := &http.Client{Timeout: 10 * time.Second}

	fetch := func() (decimal.Decimal, error) {
		response, err := client.Get(url)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot fetch price: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(response.Body)
			return decimal.Zero, fmt.Errorf("error fetching price: %s", string(body))
		}

		var parsed map[string]struct {
			Usd float64 `json:"usd"`
		}
		if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
			return decimal.Zero, fmt.Errorf("cannot decode price response: %w", err)
		}

		quote, ok := parsed[symbol]
		if !ok {
			return decimal.Zero, fmt.Errorf("price response missing %s quote", symbol)
		}

		return decimal.NewFromFloat(quote.Usd), nil
	}

	return &Oracle{cached: utils.Memoize(fetch, ttl)}
}

// NativeTokenUsd returns the cached-or-fresh USD price of the gas token.
func (o *Oracle) NativeTokenUsd() (decimal.Decimal, error) {
	return o.cached()
}
