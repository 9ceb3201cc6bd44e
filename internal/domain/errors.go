package domain

import "errors"

var ErrUnsupportedCurrency = errors.New("unsupported currency")
