package constants_test

import (
	"fmt"
	"net/http"

	"github.com/agentstation/locsync/pkg/constants"
)

// Example demonstrates building an HTTP client with the shared timeout.
func Example() {
	client := &http.Client{Timeout: constants.DefaultHTTPTimeout}
	fmt.Println(client.Timeout)
	fmt.Println(constants.EnumMaxLength)
	// Output:
	// 30s
	// 64
}
