package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/delphi/internal/config"
)

var once sync.Once
var pooledClient *http.Client

// GetHttpClient returns the shared client used by the llm and embedding providers
// so that they reuse connections.
func GetHttpClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
				ForceAttemptHTTP2:   true,
			},
		}
	})
	return pooledClient
}
