package completion

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ParseForm validates an application/x-www-form-urlencoded body. Bracketed
// keys nest one level, so "params[top_k]=40" becomes {"params":{"top_k":"40"}}.
// Form values are strings, so numeric params fail the schema's type checks.
func ParseForm(body []byte) (Request, *ValidationError) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Request{}, rootError("invalid_form", "Request body must be a valid form-encoded document")
	}

	doc := map[string]any{}
	for key, vals := range values {
		val := formValue(vals)
		parent, child, nested := splitBracketKey(key)
		if !nested {
			doc[key] = val
			continue
		}
		obj, ok := doc[parent].(map[string]any)
		if !ok {
			obj = map[string]any{}
			doc[parent] = obj
		}
		obj[child] = val
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return Request{}, rootError("invalid_form", err.Error())
	}
	return Parse(raw)
}

func formValue(vals []string) any {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals
}

// splitBracketKey splits "a[b]" into ("a", "b", true).
func splitBracketKey(key string) (string, string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

// rootError reports a failure that concerns the whole document.
func rootError(typ, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: rootField, Type: typ, Message: msg}}}
}
