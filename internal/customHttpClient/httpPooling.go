package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/DocChat/internal/config"
)

//the Gemini embedding and completion clients share this pooled transport so
//repeated calls reuse connections instead of paying the handshake every time

var once sync.Once
var pooledClient *http.Client

func GetPooledClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooledClient
}
