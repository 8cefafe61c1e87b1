// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"fmt"
	"io"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
)

var (
	logger   = log.WithContext("pkg", "api")
	validate = NewValidator()
)

// NewValidator returns a validator knowing the "address" tag, which accepts
// hex encoded addresses.
func NewValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			panic(fmt.Errorf("%q is not a string", fl.FieldName()))
		}
		_, err := ledger.ParseAddress(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(err)
	}
	return v
}

// ParseValidJSON parses a JSON object in strict mode and validates it by its
// struct tags. Any failure is a bad request.
func ParseValidJSON(r io.Reader, v any) error {
	if err := ParseJSON(r, v); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	if err := validate.Struct(v); err != nil {
		return BadRequest(err)
	}
	return nil
}
