package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackstar01-dark/mueblix/internal/remote"
)

// fakeAPI serves GET /producto and GET /producto/{id} from a fixed set of details.
func fakeAPI(t *testing.T, details map[string]string, order []string) (*Client, *atomic.Int32) {
	t.Helper()
	var detailCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /producto", func(w http.ResponseWriter, r *http.Request) {
		ids := make([]string, 0, len(order))
		for _, id := range order {
			ids = append(ids, fmt.Sprintf(`{"_id":%q}`, id))
		}
		w.Write([]byte("[" + strings.Join(ids, ",") + "]"))
	})
	mux.HandleFunc("GET /producto/{id}", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		body, ok := details[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Producto no encontrado"}`))
			return
		}
		w.Write([]byte(body))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	rc, err := remote.NewClient(remote.Options{BaseURL: server.URL})
	require.NoError(t, err)
	return NewClient(rc), &detailCalls
}

func TestLoad_FetchesDetailPerItemInOrder(t *testing.T) {
	client, calls := fakeAPI(t, map[string]string{
		"a": `{"_id":"a","nombre":"Silla","precio":10}`,
		"b": `{"_id":"b","nombre":"Mesa","precio":"15.5"}`,
	}, []string{"a", "b"})

	products, err := client.Load(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "Silla", products[0].Name)
	assert.Equal(t, "10", products[0].Price.String())
	assert.Equal(t, "b", products[1].ID)
	assert.Equal(t, "15.5", products[1].Price.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoad_DetailFailureAborts(t *testing.T) {
	client, _ := fakeAPI(t, map[string]string{
		"a": `{"_id":"a","nombre":"Silla","precio":10}`,
	}, []string{"a", "gone"})

	_, err := client.Load(context.Background(), 20, 0)

	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestGet_DecodesDetail(t *testing.T) {
	client, _ := fakeAPI(t, map[string]string{
		"a": `{
			"_id":"a","nombre":"Sofá","precio":"1200.50","cantidad":3,"estatus":"activo",
			"categoria":{"nombre":"Sala"},
			"caracteristicas":{"tipo":"Tela","descripcion":"Tres plazas","color":"gris","peso":42.5},
			"imagen":["https://img/1.jpg"],
			"sensor":{"nombre":"s1","tipo":"Temperatura","estado":"ok","lectura":{"valor":21.5,"fecha":"2025-01-01"}}
		}`,
	}, nil)

	detail, err := client.Get(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "Sofá", detail.Name)
	assert.Equal(t, "1200.5", detail.Price.String())
	assert.Equal(t, 3, detail.Quantity)
	assert.Equal(t, "Sala", detail.Category.Name)
	require.NotNil(t, detail.Characteristics.Weight)
	assert.Equal(t, 42.5, *detail.Characteristics.Weight)
	assert.Equal(t, []string{"https://img/1.jpg"}, detail.Images)
	assert.Equal(t, 21.5, detail.Sensor.Reading.Value)
}

func TestGet_NonNumericPriceIsRejected(t *testing.T) {
	client, _ := fakeAPI(t, map[string]string{
		"a": `{"_id":"a","nombre":"Silla","precio":"gratis"}`,
	}, nil)

	_, err := client.Get(context.Background(), "a")
	assert.ErrorIs(t, err, remote.ErrMalformedResponse)
}

type recordingDoer struct {
	req remote.Request
}

func (r *recordingDoer) DoJSON(_ context.Context, req remote.Request, _ any) error {
	r.req = req
	return nil
}

func TestList_DefaultsPage(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient(doer)

	_, err := client.List(context.Background(), 0, -5)
	require.NoError(t, err)

	assert.Equal(t, "/producto", doer.req.Path)
	assert.Equal(t, "20", doer.req.Query.Get("limit"))
	assert.Equal(t, "0", doer.req.Query.Get("offset"))
}

func TestGet_EscapesIdentifier(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient(doer)

	_, err := client.Get(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/producto/a%2Fb", doer.req.Path)
}

func TestGet_RejectsDotSegments(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient(doer)

	for _, id := range []string{"", ".", ".."} {
		_, err := client.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
	assert.Empty(t, doer.req.Path, "no request may be issued")
}

func TestGet_DotsInsideIdentifierAreEscaped(t *testing.T) {
	doer := &recordingDoer{}
	client := NewClient(doer)

	_, err := client.Get(context.Background(), "../admin")
	require.NoError(t, err)
	assert.Equal(t, "/producto/..%2Fadmin", doer.req.Path)
}

// blockingDoer holds every detail request until release is closed and then
// answers with the state of the request context.
type blockingDoer struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingDoer) DoJSON(ctx context.Context, _ remote.Request, out any) error {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	if err := ctx.Err(); err != nil {
		return err
	}
	return json.Unmarshal([]byte(`{"_id":"p1","nombre":"Silla","precio":10}`), out)
}

func TestGet_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	doer := &blockingDoer{started: make(chan struct{}), release: make(chan struct{})}
	client := NewClient(doer)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Get(firstCtx, "p1")
		firstErr <- err
	}()
	<-doer.started

	cancelFirst()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)

	type result struct {
		name string
		err  error
	}
	second := make(chan result, 1)
	go func() {
		detail, err := client.Get(context.Background(), "p1")
		if err != nil {
			second <- result{err: err}
			return
		}
		second <- result{name: detail.Name}
	}()
	close(doer.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Silla", res.name)
}
