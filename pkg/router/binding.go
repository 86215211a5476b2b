package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/questx-lab/secretsanta/pkg/errorx"
)

const maxBodySize = 1 << 20

// bind fills req from the JSON body and from the path parameters named by
// the `path` tag of its string fields. Path parameters win over the body.
func bind(r *http.Request, req any) error {
	if r.Body != nil && r.Method != http.MethodGet {
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		if err := decoder.Decode(req); err != nil && !errors.Is(err, io.EOF) {
			return errorx.New(errorx.BadRequest, "Invalid request body")
		}
	}

	value := reflect.ValueOf(req).Elem()
	if value.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < value.NumField(); i++ {
		field := value.Type().Field(i)
		name, ok := field.Tag.Lookup("path")
		if !ok || field.Type.Kind() != reflect.String {
			continue
		}

		value.Field(i).SetString(chi.URLParam(r, name))
	}

	return nil
}
