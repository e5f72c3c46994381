package constants

// Placeholder is the positional parameter marker in query templates.
const Placeholder = '#'

// IDField is the reserved document identifier field.
const IDField = "_id"

// IDQuery is the template matching a single document by identifier.
const IDQuery = "{_id:#}"

// EmptyQuery matches every document.
const EmptyQuery = "{}"

const (
	DefaultTemplateCacheSize = 256
	DefaultTracerName        = "github.com/jongo-go/jongo"
)

var (
	EnvMongoDBURI = "JONGO_MONGODB_URI"
	EnvDatabase   = "JONGO_DATABASE"
)
