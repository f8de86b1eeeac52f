package httptransport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redone-net/marketplace/internal/catalog/service/models/product"
	"github.com/redone-net/marketplace/pkg/httperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	products map[int64]*product.Product
	images   map[int64][]byte
	imageDir string
	nextID   int64
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()

	return &fakeService{
		products: map[int64]*product.Product{},
		images:   map[int64][]byte{},
		imageDir: t.TempDir(),
		nextID:   1,
	}
}

func (f *fakeService) Create(_ context.Context, p product.Product) (*product.Product, error) {
	p.ID = f.nextID
	f.nextID++
	f.products[p.ID] = &p

	return &p, nil
}

func (f *fakeService) Update(_ context.Context, p product.Product) (*product.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return nil, httperr.New(httperr.KindNotFound, "product not found")
	}
	f.products[p.ID] = &p

	return &p, nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return httperr.New(httperr.KindNotFound, "product not found")
	}
	delete(f.products, id)

	return nil
}

func (f *fakeService) List(context.Context) ([]product.Product, error) {
	list := make([]product.Product, 0, len(f.products))
	for _, p := range f.products {
		list = append(list, *p)
	}

	return list, nil
}

func (f *fakeService) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, httperr.New(httperr.KindNotFound, "product not found")
	}

	return p, nil
}

func (f *fakeService) SaveImage(_ context.Context, id int64, image io.Reader) error {
	if _, ok := f.products[id]; !ok {
		return httperr.New(httperr.KindNotFound, "product not found")
	}
	data, err := io.ReadAll(image)
	if err != nil {
		return err
	}
	f.images[id] = data

	return os.WriteFile(f.imagePath(id), data, 0o644)
}

func (f *fakeService) ImageFile(id int64) (string, error) {
	if _, ok := f.images[id]; !ok {
		return "", httperr.New(httperr.KindNotFound, "image not found")
	}

	return f.imagePath(id), nil
}

func (f *fakeService) imagePath(id int64) string {
	return filepath.Join(f.imageDir, "product.jpg")
}

func token(t *testing.T, username string, roles ...string) string {
	t.Helper()

	roleList := make([]any, len(roles))
	for i, r := range roles {
		roleList[i] = r
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"preferred_username": username,
		"sub":                username + "-uuid",
		"realm_access":       map[string]any{"roles": roleList},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return "Bearer " + signed
}

func newTestTransport(t *testing.T) (*HTTPTransport, *fakeService) {
	t.Helper()

	svc := newFakeService(t)
	transport := NewHTTPTransport(svc)
	transport.RegisterRoutes()

	return transport, svc
}

func do(transport *HTTPTransport, method, target, authorization string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	transport.router.ServeHTTP(rec, req)

	return rec
}

func TestCreateProduct(t *testing.T) {
	transport, svc := newTestTransport(t)

	body := strings.NewReader(`{"name":"Clavier","description":"Clavier mécanique","price":49.99,"quantity":10}`)
	rec := do(transport, http.MethodPost, "/api/produits", token(t, "admin", "ADMIN"), body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/api/produits/1", rec.Header().Get("Location"))
	require.Contains(t, rec.Body.String(), `"name":"Clavier"`)
	require.Contains(t, rec.Body.String(), `"price":"49.99"`)

	created := svc.products[1]
	require.NotNil(t, created)
	require.True(t, created.Price.Equal(decimal.RequireFromString("49.99")))
	require.NotNil(t, created.Quantity)
	require.Equal(t, 10, *created.Quantity)
}

func TestCreateProductValidation(t *testing.T) {
	transport, _ := newTestTransport(t)

	for name, body := range map[string]string{
		"missing name":      `{"price":10}`,
		"negative price":    `{"name":"x","price":-1}`,
		"negative quantity": `{"name":"x","price":1,"quantity":-3}`,
		"malformed json":    `{`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(transport, http.MethodPost, "/api/produits", token(t, "admin", "ADMIN"), strings.NewReader(body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	transport, _ := newTestTransport(t)
	body := `{"name":"Clavier","price":49.99}`

	rec := do(transport, http.MethodPost, "/api/produits", token(t, "alice", "CLIENT"), strings.NewReader(body))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(transport, http.MethodPost, "/api/produits", "", strings.NewReader(body))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier", Price: decimal.New(10, 0)}
	svc.nextID = 2

	body := strings.NewReader(`{"name":"Clavier AZERTY","price":59.99}`)
	rec := do(transport, http.MethodPut, "/api/produits/1", token(t, "admin", "ADMIN"), body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Clavier AZERTY", svc.products[1].Name)
	require.Nil(t, svc.products[1].Quantity)
}

func TestUpdateProductNotFound(t *testing.T) {
	transport, _ := newTestTransport(t)

	body := strings.NewReader(`{"name":"Clavier","price":59.99}`)
	rec := do(transport, http.MethodPut, "/api/produits/42", token(t, "admin", "ADMIN"), body)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}

	rec := do(transport, http.MethodDelete, "/api/produits/1", token(t, "admin", "ADMIN"), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, svc.products)

	rec = do(transport, http.MethodDelete, "/api/produits/1", token(t, "admin", "ADMIN"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndGetProduct(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier", Price: decimal.RequireFromString("49.99")}

	rec := do(transport, http.MethodGet, "/api/produits", token(t, "alice", "CLIENT"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Clavier"`)

	rec = do(transport, http.MethodGet, "/api/produits/1", token(t, "alice", "CLIENT"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"price":"49.99"`)

	rec = do(transport, http.MethodGet, "/api/produits/99", token(t, "alice", "CLIENT"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(transport, http.MethodGet, "/api/produits/not-a-number", token(t, "alice", "CLIENT"), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsRequiresCredential(t *testing.T) {
	transport, _ := newTestTransport(t)

	rec := do(transport, http.MethodGet, "/api/produits", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func multipartImage(t *testing.T, contentType string, data []byte) (io.Reader, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="product.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

func TestUploadProductImage(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}

	body, contentType := multipartImage(t, "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/produits/1/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", token(t, "admin", "ADMIN"))
	rec := httptest.NewRecorder()
	transport.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []byte("jpeg-bytes"), svc.images[1])
}

func TestUploadProductImageContentTypeVariants(t *testing.T) {
	for _, contentType := range []string{"image/jpeg", "image/jpg", "image/pjpeg", "IMAGE/JPEG"} {
		t.Run(contentType, func(t *testing.T) {
			transport, svc := newTestTransport(t)
			svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}

			body, formContentType := multipartImage(t, contentType, []byte("jpeg-bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/produits/1/image", body)
			req.Header.Set("Content-Type", formContentType)
			req.Header.Set("Authorization", token(t, "admin", "ADMIN"))
			rec := httptest.NewRecorder()
			transport.router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code)
			require.Equal(t, []byte("jpeg-bytes"), svc.images[1])
		})
	}
}

func TestUploadProductImageRequiresFileField(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="product.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/produits/1/image", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token(t, "admin", "ADMIN"))
	rec := httptest.NewRecorder()
	transport.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.images)
}

func TestUploadProductImageRejectsNonJpeg(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}

	body, contentType := multipartImage(t, "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/produits/1/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", token(t, "admin", "ADMIN"))
	rec := httptest.NewRecorder()
	transport.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.images)
}

func TestUploadProductImageUnknownProduct(t *testing.T) {
	transport, _ := newTestTransport(t)

	body, contentType := multipartImage(t, "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/produits/42/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", token(t, "admin", "ADMIN"))
	rec := httptest.NewRecorder()
	transport.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeProductImage(t *testing.T) {
	transport, svc := newTestTransport(t)
	svc.products[1] = &product.Product{ID: 1, Name: "Clavier"}
	require.NoError(t, svc.SaveImage(context.Background(), 1, strings.NewReader("jpeg-bytes")))

	rec := do(transport, http.MethodGet, "/catalog/1.jpg", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	require.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestServeProductImageNotFound(t *testing.T) {
	transport, _ := newTestTransport(t)

	rec := do(transport, http.MethodGet, "/catalog/42.jpg", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(transport, http.MethodGet, "/catalog/42.png", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
