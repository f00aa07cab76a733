// Package controllers maps HTTP requests onto the services.
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/pkg/bind"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/middleware"
	"github.com/vastrahub/vastra/pkg/response"
)

// maxImageBytes caps a single product photo upload at 5 MB.
const maxImageBytes = 5 << 20

// ProductController serves the catalog endpoints.
type ProductController struct {
	catalog *services.CatalogService
}

// NewProductController wires the controller.
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index handles GET /api/products.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repositories.ListFilter{
		Keyword:   q.Get("keyword"),
		Category:  q.Get("category"),
		Page:      atoiDefault(q.Get("page"), 1),
		Limit:     atoiDefault(q.Get("limit"), 12),
		SortField: q.Get("sortField"),
		SortOrder: q.Get("sortOrder"),
	}
	if f.Limit > 100 {
		f.Limit = 12
	}
	if v := q.Get("minPrice"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &n
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &n
		}
	}

	products, total, err := c.catalog.List(r.Context(), f)
	if err != nil {
		logger.Error("products: list failed", "error", err)
		response.Internal(w)
		return
	}

	response.OK(w, response.Payload{
		"products":   products,
		"totalCount": total,
		"totalPages": pageCount(total, f.Limit),
	})
}

// Show handles GET /api/products/{id}.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	p, err := c.catalog.Get(r.Context(), id)
	if err != nil {
		var nf services.ErrProductNotFound
		if errors.As(err, &nf) {
			response.NotFound(w, "Product not found")
			return
		}
		logger.Error("products: get failed", "id", id.Hex(), "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{"product": p})
}

// Store handles POST /api/admin/products.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	createdBy := primitive.NilObjectID
	if identity, ok := middleware.FromCtx(r.Context()); ok {
		if oid, err := primitive.ObjectIDFromHex(identity.ID); err == nil {
			createdBy = oid
		}
	}

	p, err := c.catalog.Create(r.Context(), in, createdBy)
	if err != nil {
		var iv services.ErrInvalidProduct
		if errors.As(err, &iv) {
			response.BadRequest(w, iv.Reason)
			return
		}
		logger.Error("products: create failed", "error", err)
		response.Internal(w)
		return
	}
	response.Created(w, response.Payload{"product": p})
}

// Update handles PUT /api/admin/products/{id}.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var in services.ProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	p, err := c.catalog.Update(r.Context(), id, in)
	if err != nil {
		var iv services.ErrInvalidProduct
		var nf services.ErrProductNotFound
		switch {
		case errors.As(err, &iv):
			response.BadRequest(w, iv.Reason)
		case errors.As(err, &nf):
			response.NotFound(w, "Product not found")
		default:
			logger.Error("products: update failed", "id", id.Hex(), "error", err)
			response.Internal(w)
		}
		return
	}
	response.OK(w, response.Payload{"product": p})
}

// Destroy handles DELETE /api/admin/products/{id}.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	if err := c.catalog.Delete(r.Context(), id); err != nil {
		var nf services.ErrProductNotFound
		if errors.As(err, &nf) {
			response.NotFound(w, "Product not found")
			return
		}
		logger.Error("products: delete failed", "id", id.Hex(), "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{"message": "Product deleted"})
}

// UploadImage handles POST /api/admin/products/{id}/images.
// Expects a multipart form with an "image" file field.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.BadRequest(w, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "The image field is required.")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		response.BadRequest(w, "Could not read upload")
		return
	}
	if len(content) > maxImageBytes {
		response.BadRequest(w, "Image exceeds the 5 MB limit")
		return
	}

	p, err := c.catalog.AddImage(r.Context(), id, header.Filename, content)
	if err != nil {
		var nf services.ErrProductNotFound
		if errors.As(err, &nf) {
			response.NotFound(w, "Product not found")
			return
		}
		logger.Error("products: image upload failed", "id", id.Hex(), "error", err)
		response.Internal(w)
		return
	}
	response.Created(w, response.Payload{"product": p})
}

// pathObjectID parses the {name} path param as an ObjectID, writing a
// 400 when it is malformed.
func pathObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "Invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageCount(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
