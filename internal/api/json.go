package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
)

// goJSONSerializer plugs goccy/go-json into echo's c.JSON and c.Bind.
type goJSONSerializer struct{}

func (goJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (goJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("malformed JSON: %v", err)).SetInternal(err)
	}
	return nil
}

// etag is a strong validator over a response body.
func etag(body []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%016x", xxh3.Hash(body)))
}
