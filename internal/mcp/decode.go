package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/cuebin/internal/errors"
)

// decode converts tool arguments into T by a JSON round trip, so request
// structs share the tags of the ops inputs they mirror.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, errors.NewInvalidRequest("arguments are not JSON: " + err.Error())
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.NewInvalidRequest("invalid arguments: " + err.Error())
	}
	return out, nil
}
