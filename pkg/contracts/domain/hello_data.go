package domain

import "fmt"

// HelloData is the two-field record every request-body endpoint decodes.
// It is read-only once decoded.
type HelloData struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
}

// String renders the record the way the access logs print it
func (h HelloData) String() string {
	return fmt.Sprintf("username=%s, age=%d", h.Username, h.Age)
}
