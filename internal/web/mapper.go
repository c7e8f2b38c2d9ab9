package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/willemschots/quill/internal/errorz"
)

// mapper is a generic HTTP handler that maps requests to target
// function calls and writes the output to the response.
type mapper[IN, OUT any] struct {
	s      *Server
	req    func(*http.Request) (IN, error)
	target func(context.Context, IN) (OUT, error)
	res    func(result[IN, OUT]) error
}

// result is the result of a succesful request.
// it contains all relevant data because we can't know
// in advance what we will need to construct a response.
type result[IN, OUT any] struct {
	s   *Server
	r   *http.Request
	w   http.ResponseWriter
	in  IN
	out OUT
}

// mapBoth creates a HTTP Handler that:
// 1. Maps the JSON request body to a value of input type IN.
// 2. Calls the target func with that value.
// 3. Writes the output of type OUT as JSON with status 200.
//
// Errors are written using the server error handler.
func mapBoth[IN, OUT any](s *Server, targetFunc func(context.Context, IN) (OUT, error)) *mapper[IN, OUT] {
	return &mapper[IN, OUT]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return jsonRequest[IN](r)
		},
		target: targetFunc,
		res: func(r result[IN, OUT]) error {
			return r.s.writeJSON(r.w, http.StatusOK, r.out)
		},
	}
}

// mapQuery is like mapBoth but maps the request query parameters to the
// input type instead of the request body.
func mapQuery[IN, OUT any](s *Server, targetFunc func(context.Context, IN) (OUT, error)) *mapper[IN, OUT] {
	return &mapper[IN, OUT]{
		s: s,
		req: func(r *http.Request) (IN, error) {
			return queryRequest[IN](s, r)
		},
		target: targetFunc,
		res: func(r result[IN, OUT]) error {
			return r.s.writeJSON(r.w, http.StatusOK, r.out)
		},
	}
}

// response overwrites the function that writes the output to the response.
func (e *mapper[IN, OUT]) response(fn func(result[IN, OUT]) error) *mapper[IN, OUT] {
	e.res = fn
	return e
}

func (e *mapper[IN, OUT]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := e.req(r)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}

	out, err := e.target(r.Context(), in)
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}

	err = e.res(result[IN, OUT]{
		s:   e.s,
		r:   r,
		w:   w,
		in:  in,
		out: out,
	})
	if err != nil {
		e.s.handleError(w, r, err)
		return
	}
}

// jsonRequest maps a JSON request body to a struct.
func jsonRequest[IN any](r *http.Request) (IN, error) {
	var in IN

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&in); err != nil {
		return in, errorz.InvalidInput{err}
	}

	return in, nil
}

// queryRequest maps request query parameters to a struct.
func queryRequest[IN any](s *Server, r *http.Request) (IN, error) {
	var in IN
	err := s.decoder.Decode(&in, r.URL.Query())
	return in, decodeError(err)
}

func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}
