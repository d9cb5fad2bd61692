package word_api_client

const (
	// RPC endpoints
	ActiveCategoriesEndpoint = "/rest/v1/rpc/get_active_categories"
	RandomWordEndpoint       = "/rest/v1/rpc/get_random_word"

	// Headers
	APIKeyHeader      = "apikey"
	AuthHeader        = "Authorization"
	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"
)
