package word_api_client

import (
	"github.com/mcdev12/wordparty/clients"
)

// WordApiClient talks to the hosted word-data service, which exposes its data
// as HTTP RPC functions behind an access key.
type WordApiClient struct {
	*clients.BaseClient
}

func NewWordApiClient(baseURL, accessKey string) *WordApiClient {
	client := &WordApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader(APIKeyHeader, accessKey)
	client.SetHeader(AuthHeader, "Bearer "+accessKey)
	client.SetHeader(ContentTypeHeader, ContentTypeJSON)

	return client
}
