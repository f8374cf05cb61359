package httputil

import "encoding/json"

// OptionalString is a PATCH field that distinguishes "absent" from "null".
// A plain *string collapses the two, which would make clearing a post body
// indistinguishable from leaving it untouched.
//
//	{}                  -> Present=false
//	{"content": null}   -> Present=true, Value=nil
//	{"content": "text"} -> Present=true, Value=&"text"
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs when the key is in the document, so reaching it marks presence.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	return json.Unmarshal(data, &o.Value)
}
