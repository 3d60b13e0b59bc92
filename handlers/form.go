package handlers

import (
	"net/http"

	"github.com/monoculum/formam"
)

var formDecoder = formam.NewDecoder(&formam.DecoderOptions{
	TagName:           "formam",
	IgnoreUnknownKeys: true,
})

func decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	return formDecoder.Decode(r.PostForm, dst)
}
