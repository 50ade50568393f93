package services

import (
	"fmt"
	"strings"
)

const currencyName = "LEMPIRAS"

var (
	wordUnits = [...]string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}

	wordTeens = [...]string{
		"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
		"DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
		"VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS", "VEINTICUATRO",
		"VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
	}

	wordTens = [...]string{"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}

	wordHundreds = [...]string{
		"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
		"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
	}
)

// AmountInWords spells an amount in cents the way it is written on receipts:
// 150050 -> "UN MIL QUINIENTOS LEMPIRAS CON 50/100"
func AmountInWords(cents int64) string {
	prefix := ""
	if cents < 0 {
		prefix = "MENOS "
		cents = -cents
	}

	whole, fraction := cents/100, cents%100
	words := "CERO"
	if whole > 0 {
		words = spellInteger(whole)
	}
	return fmt.Sprintf("%s%s %s CON %02d/100", prefix, apocope(words), currencyName, fraction)
}

// spellInteger covers everything below a trillion; n must be positive
func spellInteger(n int64) string {
	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLÓN")
		} else {
			parts = append(parts, apocope(spellInteger(millions))+" MILLONES")
		}
		n %= 1_000_000
	}

	if thousands := n / 1000; thousands > 0 {
		parts = append(parts, apocope(spellBelowThousand(thousands))+" MIL")
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, spellBelowThousand(n))
	}

	return strings.Join(parts, " ")
}

func spellBelowThousand(n int64) string {
	if n == 100 {
		return "CIEN"
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, wordHundreds[h])
		n %= 100
	}

	switch {
	case n >= 30:
		tens := wordTens[n/10]
		if u := n % 10; u > 0 {
			tens += " Y " + wordUnits[u]
		}
		parts = append(parts, tens)
	case n >= 10:
		parts = append(parts, wordTeens[n-10])
	case n > 0:
		parts = append(parts, wordUnits[n])
	}

	return strings.Join(parts, " ")
}

// apocope shortens a trailing "UNO" placed before a noun
func apocope(words string) string {
	switch {
	case strings.HasSuffix(words, "VEINTIUNO"):
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(words, "UNO"):
		return strings.TrimSuffix(words, "O")
	}
	return words
}
