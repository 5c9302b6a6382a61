package domain

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Price цена товара. Хранится как число, в форме живёт как текст.
type Price float64

var (
	hundred = big.NewRat(100, 1)
	half    = big.NewRat(1, 2)
)

// Fixed форматирует цену ровно с двумя знаками после запятой.
// Округление идёт по точному двоичному значению, ровная половина - вверх по модулю.
// От 1e21 и выше, как и для NaN/Inf, возвращается FormValue.
func (p Price) Fixed() string {
	x := float64(p)
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e21 {
		return p.FormValue()
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	cents := new(big.Rat).SetFloat64(x)
	cents.Mul(cents, hundred)
	n := new(big.Int).Quo(cents.Num(), cents.Denom())
	if rest := new(big.Rat).Sub(cents, new(big.Rat).SetInt(n)); rest.Cmp(half) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	digits := n.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// FormValue возвращает цену в том виде, в котором её показывает поле формы:
// кратчайшая запись, экспонента для очень больших и очень малых значений.
func (p Price) FormValue() string {
	x := float64(p)
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case x == 0:
		return "0"
	}
	if a := math.Abs(x); a >= 1e21 || a < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(x, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Product представляет товар каталога
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
}
