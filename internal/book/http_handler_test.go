package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*MockRepository, http.Handler) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo), zerolog.Nop())
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mockRepo, mux
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

var testBook = Book{ID: 1, Title: "Alice in Wonderland", Author: "Lewis Carroll", Year: intPtr(1865)}

func TestHTTPHandler_Create(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().
			Create(gomock.Any(), Input{Title: "Alice in Wonderland", Author: "Lewis Carroll", Year: intPtr(1865)}).
			Return(testBook, nil)

		w := serve(router, http.MethodPost, "/books/", `{"title":"Alice in Wonderland","author":"Lewis Carroll","year":1865}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":1,"title":"Alice in Wonderland","author":"Lewis Carroll","year":1865}`, w.Body.String())
	})

	t.Run("slash-less alias", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(Book{ID: 2, Title: "T", Author: "A"}, nil)

		w := serve(router, http.MethodPost, "/books", `{"title":"T","author":"A"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":2,"title":"T","author":"A","year":null}`, w.Body.String())
	})

	t.Run("validation error", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/books/", `{"title":"","author":"A"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
		assert.Contains(t, w.Body.String(), `"field":"title"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/books/", `{"title":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", errorCode(t, w))
	})

	t.Run("unknown field", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/books/", `{"title":"T","author":"A","isbn":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("trailing data after the object", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/books/", `{"title":"T","author":"A"} {"garbage":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", errorCode(t, w))
	})

	t.Run("second object after the first", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/books/1", `{"title":"T","author":"A"}{"title":"U","author":"B"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("trailing whitespace is fine", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), Input{Title: "T", Author: "A"}).Return(Book{ID: 3, Title: "T", Author: "A"}, nil)

		w := serve(router, http.MethodPost, "/books/", "{\"title\":\"T\",\"author\":\"A\"}\n  ")

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/books/", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(Book{}, context.DeadlineExceeded)

		w := serve(router, http.MethodPost, "/books/", `{"title":"T","author":"A"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
	})
}

func TestHTTPHandler_List(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	tests := []struct {
		name           string
		target         string
		setupMock      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "defaults",
			target: "/books/",
			setupMock: func() {
				mockRepo.EXPECT().List(gomock.Any(), ListQuery{Skip: 0, Limit: 10}).Return([]Book{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:   "skip and limit",
			target: "/books/?skip=2&limit=1",
			setupMock: func() {
				mockRepo.EXPECT().List(gomock.Any(), ListQuery{Skip: 2, Limit: 1}).Return([]Book{testBook}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"id":1,"title":"Alice in Wonderland","author":"Lewis Carroll","year":1865}]`,
		},
		{
			name:           "non-numeric skip",
			target:         "/books/?skip=abc",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative limit",
			target:         "/books/?limit=-3",
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "store failure",
			target: "/books",
			setupMock: func() {
				mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			w := serve(router, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestHTTPHandler_Get(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(testBook, nil)

		w := serve(router, http.MethodGet, "/books/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), int64(42)).Return(Book{}, ErrNotFound)

		w := serve(router, http.MethodGet, "/books/42", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	})

	t.Run("bad id", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/books/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		in := Input{Title: "Through the Looking-Glass", Author: "Lewis Carroll", Year: intPtr(1871)}
		mockRepo.EXPECT().Update(gomock.Any(), int64(1), in).
			Return(Book{ID: 1, Title: in.Title, Author: in.Author, Year: in.Year}, nil)

		w := serve(router, http.MethodPut, "/books/1", `{"title":"Through the Looking-Glass","author":"Lewis Carroll","year":1871}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var got Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "Through the Looking-Glass", got.Title)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), int64(7), gomock.Any()).Return(Book{}, ErrNotFound)

		w := serve(router, http.MethodPut, "/books/7", `{"title":"T","author":"A"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("all fields required", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/books/1", `{"title":"only title"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)

		w := serve(router, http.MethodDelete, "/books/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Book deleted"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), int64(2)).Return(ErrNotFound)

		w := serve(router, http.MethodDelete, "/books/2", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Book not found")
	})
}

func TestHTTPHandler_Search(t *testing.T) {
	mockRepo, router := newTestRouter(t)

	t.Run("all filters", func(t *testing.T) {
		mockRepo.EXPECT().
			Search(gomock.Any(), SearchQuery{Title: "Alice", Author: "Carroll", Year: intPtr(1865)}).
			Return([]Book{testBook}, nil)

		w := serve(router, http.MethodGet, "/books/search/?title=Alice&author=Carroll&year=1865", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var got []Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("no filters", func(t *testing.T) {
		mockRepo.EXPECT().Search(gomock.Any(), SearchQuery{}).Return([]Book{}, nil)

		w := serve(router, http.MethodGet, "/books/search", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("bad year", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/books/search/?year=soon", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
