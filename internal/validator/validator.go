// Package validator проверяет поля формы товара и собирает ошибки по именам полей.
package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Имена полей в карте ошибок
const (
	FieldName  = "name"
	FieldPrice = "price"
)

// Сообщения об ошибках
const (
	MsgNameRequired  = "name is required"
	MsgPriceRequired = "price is required"
	MsgPriceNumber   = "price must be a number"
	MsgPricePositive = "price must be a number greater than 0"
	MsgPriceFinite   = "price must be a finite number"
)

// decimalPrefixRX longest leading decimal literal, the way a lenient float parser reads it.
var decimalPrefixRX = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// Validator хранит ошибки по полям. Пустая карта означает валидные данные.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError записывает ошибку поля. Первая ошибка поля не перезаписывается.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check добавляет ошибку, если ok == false
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Validate проверяет название и текст цены. Правила для цены идут по
// порядку, побеждает первое сработавшее; ошибки названия и цены независимы.
func Validate(name, priceText string) map[string]string {
	v := New()
	v.Check(strings.TrimSpace(name) != "", FieldName, MsgNameRequired)

	if priceText == "" {
		v.AddError(FieldPrice, MsgPriceRequired)
		return v.Errors
	}
	price, ok := ParsePrice(priceText)
	v.Check(ok, FieldPrice, MsgPriceNumber)
	v.Check(!ok || price > 0, FieldPrice, MsgPricePositive)
	v.Check(!ok || !math.IsInf(price, 0), FieldPrice, MsgPriceFinite)
	return v.Errors
}

// ParsePrice читает самый длинный десятичный префикс строки после
// начальных пробелов. ok == false, если числа в начале строки нет.
// Переполнение экспоненты даёт ±Inf.
func ParsePrice(text string) (float64, bool) {
	lit := decimalPrefixRX.FindString(strings.TrimLeft(text, " \t\n\r\f\v"))
	if lit == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// ErrRange still carries ±Inf or the rounded value
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}
