package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// IndexName is the {index} path parameter.
type IndexName = string

// DocumentID is the {id} path parameter.
type DocumentID = string

// ListIndicesParams defines parameters for ListIndices.
type ListIndicesParams struct {
	Pattern *string `form:"pattern,omitempty" json:"pattern,omitempty"`
}

// CreateDocumentParams defines parameters for CreateDocument.
type CreateDocumentParams struct {
	ID      *string `form:"id,omitempty" json:"id,omitempty"`
	Refresh *string `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// WriteParams carries the refresh policy of update, delete and bulk calls.
type WriteParams struct {
	Refresh *string `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/cluster/health)
	GetClusterHealth(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/indices)
	ListIndices(w http.ResponseWriter, r *http.Request, params ListIndicesParams)
	// (PUT /api/v1/indices/{index})
	CreateIndex(w http.ResponseWriter, r *http.Request, index IndexName)
	// (DELETE /api/v1/indices/{index})
	DeleteIndex(w http.ResponseWriter, r *http.Request, index IndexName)
	// (HEAD /api/v1/indices/{index})
	IndexExists(w http.ResponseWriter, r *http.Request, index IndexName)
	// (POST /api/v1/indices/{index}/documents)
	CreateDocument(w http.ResponseWriter, r *http.Request, index IndexName, params CreateDocumentParams)
	// (POST /api/v1/indices/{index}/documents/bulk)
	BulkIndex(w http.ResponseWriter, r *http.Request, index IndexName, params WriteParams)
	// (GET /api/v1/indices/{index}/documents/{id})
	GetDocument(w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID)
	// (PUT /api/v1/indices/{index}/documents/{id})
	UpdateDocument(w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID, params WriteParams)
	// (DELETE /api/v1/indices/{index}/documents/{id})
	DeleteDocument(w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID, params WriteParams)
	// (POST /api/v1/indices/{index}/search)
	SearchDocuments(w http.ResponseWriter, r *http.Request, index IndexName)
	// (GET /api/v1/indices/{index}/count)
	CountDocuments(w http.ResponseWriter, r *http.Request, index IndexName)
}

// MiddlewareFunc wraps a bound handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to ErrorHandlerFunc when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) bindQuery(w http.ResponseWriter, r *http.Request, name string, dest **string) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

// GetInfo operation middleware
func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetInfo)
}

// GetClusterHealth operation middleware
func (siw *ServerInterfaceWrapper) GetClusterHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetClusterHealth)
}

// ListIndices operation middleware
func (siw *ServerInterfaceWrapper) ListIndices(w http.ResponseWriter, r *http.Request) {
	var params ListIndicesParams
	if !siw.bindQuery(w, r, "pattern", &params.Pattern) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListIndices(w, r, params)
	})
}

// CreateIndex operation middleware
func (siw *ServerInterfaceWrapper) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateIndex(w, r, index)
	})
}

// DeleteIndex operation middleware
func (siw *ServerInterfaceWrapper) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteIndex(w, r, index)
	})
}

// IndexExists operation middleware
func (siw *ServerInterfaceWrapper) IndexExists(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.IndexExists(w, r, index)
	})
}

// CreateDocument operation middleware
func (siw *ServerInterfaceWrapper) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	var params CreateDocumentParams
	if !siw.bindQuery(w, r, "id", &params.ID) || !siw.bindQuery(w, r, "refresh", &params.Refresh) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateDocument(w, r, index, params)
	})
}

// BulkIndex operation middleware
func (siw *ServerInterfaceWrapper) BulkIndex(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	var params WriteParams
	if !siw.bindQuery(w, r, "refresh", &params.Refresh) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.BulkIndex(w, r, index, params)
	})
}

// GetDocument operation middleware
func (siw *ServerInterfaceWrapper) GetDocument(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	var id DocumentID
	if !siw.bindPath(w, r, "index", &index) || !siw.bindPath(w, r, "id", &id) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetDocument(w, r, index, id)
	})
}

// UpdateDocument operation middleware
func (siw *ServerInterfaceWrapper) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	var id DocumentID
	if !siw.bindPath(w, r, "index", &index) || !siw.bindPath(w, r, "id", &id) {
		return
	}
	var params WriteParams
	if !siw.bindQuery(w, r, "refresh", &params.Refresh) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateDocument(w, r, index, id, params)
	})
}

// DeleteDocument operation middleware
func (siw *ServerInterfaceWrapper) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	var id DocumentID
	if !siw.bindPath(w, r, "index", &index) || !siw.bindPath(w, r, "id", &id) {
		return
	}
	var params WriteParams
	if !siw.bindQuery(w, r, "refresh", &params.Refresh) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteDocument(w, r, index, id, params)
	})
}

// SearchDocuments operation middleware
func (siw *ServerInterfaceWrapper) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SearchDocuments(w, r, index)
	})
}

// CountDocuments operation middleware
func (siw *ServerInterfaceWrapper) CountDocuments(w http.ResponseWriter, r *http.Request) {
	var index IndexName
	if !siw.bindPath(w, r, "index", &index) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CountDocuments(w, r, index)
	})
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates an http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates an http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Get(base+"/health", wrapper.HealthCheck)
	r.Get(base+"/metrics", wrapper.Metrics)
	r.Get(base+"/api/v1/info", wrapper.GetInfo)
	r.Get(base+"/api/v1/cluster/health", wrapper.GetClusterHealth)
	r.Get(base+"/api/v1/indices", wrapper.ListIndices)
	r.Put(base+"/api/v1/indices/{index}", wrapper.CreateIndex)
	r.Delete(base+"/api/v1/indices/{index}", wrapper.DeleteIndex)
	r.Head(base+"/api/v1/indices/{index}", wrapper.IndexExists)
	r.Post(base+"/api/v1/indices/{index}/documents", wrapper.CreateDocument)
	r.Post(base+"/api/v1/indices/{index}/documents/bulk", wrapper.BulkIndex)
	r.Get(base+"/api/v1/indices/{index}/documents/{id}", wrapper.GetDocument)
	r.Put(base+"/api/v1/indices/{index}/documents/{id}", wrapper.UpdateDocument)
	r.Delete(base+"/api/v1/indices/{index}/documents/{id}", wrapper.DeleteDocument)
	r.Post(base+"/api/v1/indices/{index}/search", wrapper.SearchDocuments)
	r.Get(base+"/api/v1/indices/{index}/count", wrapper.CountDocuments)
	return r
}
