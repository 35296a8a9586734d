package rest

import "net/http"

// NotDoneYet is returned by a producer that has taken over writing the
// response itself, possibly finishing asynchronously. The dispatcher
// performs no further serialization or finalization for such a producer;
// the producer owns both the success and failure paths.
var NotDoneYet = &notDoneYet{}

type notDoneYet struct{}

// ModelFunc produces the model for one content type. It may return a
// structured model (serialized by the dispatcher), a pre-serialized string
// or []byte (sent as-is), or NotDoneYet.
type ModelFunc func(w http.ResponseWriter, r *http.Request) (any, error)

// htmlMediaTypes are the media types served by a resource's HTML producer.
var htmlMediaTypes = []string{"text/html", "application/xhtml+xml", "*/*"}

// Resource is one addressable node in the routing tree, assembled by
// composition: an auth policy, a set of content producers for GET, and
// handlers for mutating methods. There is no inheritance chain; behavior
// differences between resources are data.
type Resource struct {
	// Name identifies the resource. It seeds the default permission names
	// ("<Name>-<METHOD>") and the default template name ("<Name>.html").
	Name string

	// RequireAuth demands a valid session before anything else runs.
	RequireAuth bool

	// AutoCheckGetPermissions makes the dispatcher verify the default GET
	// permission before invoking a producer. Only meaningful together with
	// RequireAuth. Enabled by default.
	AutoCheckGetPermissions bool

	// Template overrides the template rendered by the HTML producer.
	Template string

	producers map[string]ModelFunc
	methods   map[string]http.HandlerFunc
}

// NewResource constructs a Resource with defaults.
func NewResource(name string) *Resource {
	return &Resource{
		Name:                    name,
		AutoCheckGetPermissions: true,
		Template:                name + ".html",
		producers:               make(map[string]ModelFunc),
		methods:                 make(map[string]http.HandlerFunc),
	}
}

// HTML registers f as the producer for the HTML media types, including the
// */* wildcard.
func (res *Resource) HTML(f ModelFunc) *Resource {
	for _, mt := range htmlMediaTypes {
		res.producers[mt] = f
	}
	return res
}

// JSON registers f as the producer for application/json.
func (res *Resource) JSON(f ModelFunc) *Resource {
	res.producers["application/json"] = f
	return res
}

// Produce registers f for an arbitrary content type, such as text/csv.
func (res *Resource) Produce(contentType string, f ModelFunc) *Resource {
	res.producers[contentType] = f
	return res
}

// Method registers a handler for a non-GET method (POST, PUT, DELETE).
func (res *Resource) Method(method string, h http.HandlerFunc) *Resource {
	res.methods[method] = h
	return res
}

// PermissionFor returns the default permission name guarding a method.
func (res *Resource) PermissionFor(method string) string {
	return res.Name + "-" + method
}

func (res *Resource) producerFor(mediaType string) (ModelFunc, bool) {
	f, ok := res.producers[mediaType]
	return f, ok
}

func (res *Resource) methodFor(method string) (http.HandlerFunc, bool) {
	h, ok := res.methods[method]
	return h, ok
}

func (res *Resource) methodNames() []string {
	names := []string{http.MethodGet}
	for m := range res.methods {
		names = append(names, m)
	}
	return names
}
