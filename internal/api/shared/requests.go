package shared

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON reads the request body into v. Handlers translate a failure
// into a 400 with a generic message; the decode error itself is only logged.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
