package prices

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/GaborinoS/gablab-finance/internal/model"
)

// GetHistory fetches the maximal available daily history for one symbol and
// normalizes it into a PriceSeries. Always the full range: downstream
// indicator computation needs the lookback, and re-fetching narrower windows
// would waste rate-limited calls.
func (c *Client) GetHistory(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	query := url.Values{}
	query.Set("range", "max")
	query.Set("interval", "1d")

	var resp ChartResponse
	if err := c.get(ctx, "/"+url.PathEscape(symbol), query, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return nil, fmt.Errorf("symbol %s: %w", symbol, model.ErrNoDataForSymbol)
		}
		return nil, fmt.Errorf("get history %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		// The upstream answered but knows nothing about the symbol.
		return nil, fmt.Errorf("symbol %s: %s: %w",
			symbol, resp.Chart.Error.Description, model.ErrNoDataForSymbol)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("symbol %s: empty result set: %w", symbol, model.ErrNoDataForSymbol)
	}

	series := resp.Chart.Result[0].ToPriceSeries(symbol)
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("normalize history: %w", err)
	}
	return series, nil
}
