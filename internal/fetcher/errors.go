package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrStatusNotOK is returned when server responds with status other than 200 OK.
	ErrStatusNotOK = errors.New("response status is not 200 OK")
	// ErrPageGone is returned on 404 and 410 responses, product page was removed and retrying won't help.
	ErrPageGone = fmt.Errorf("%w: page gone", ErrStatusNotOK)
	// ErrContentTypeNotSupported is returned when response isn't a page or inventory document.
	ErrContentTypeNotSupported = errors.New("response content type not supported")
)
