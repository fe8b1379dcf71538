package dispatch

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ManuelReschke/BillFox/app/models"
)

// Both delimiter forms are live in stored templates, so one pattern matches
// either. Token names are matched whole, which also rules out substring
// collisions between keys like "valor" and "valor_total_desconto".
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}|\{\s*([A-Za-z0-9_]+)\s*\}`)

// Discount tokens never render blank. A template asking for a discount that
// was not granted shows a zero amount instead of an empty gap.
var discountTokens = map[string]struct{}{
	"desconto":             {},
	"valor_desconto":       {},
	"valor_total_desconto": {},
}

const discountFallback = "R$ 0,00"

// EmpresaFallback is used when a tenant never configured a display name.
const EmpresaFallback = "nossa equipe"

// Render substitutes placeholder tokens in a message body. Substitution is a
// single pass (not recursive) and case-sensitive. Unknown tokens render
// empty, except discount tokens which fall back to a zero amount.
func Render(body string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		key := strings.TrimSpace(strings.Trim(match, "{}"))
		if v, ok := vars[key]; ok {
			return v
		}
		if _, ok := discountTokens[key]; ok {
			return discountFallback
		}
		return ""
	})
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency renders an amount the way Brazilian tenants expect,
// e.g. 1234.5 -> "R$ 1.234,50".
func FormatCurrency(v float64) string {
	return "R$ " + ptBR.Sprintf("%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatDate renders a date in dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ChargeVariableInput carries everything the variable table for one charge
// schedule is built from.
type ChargeVariableInput struct {
	Customer    *models.Customer
	Item        *models.SubscribedItem
	Schedule    *models.ChargeSchedule
	EmpresaName string
	LinkBase    string
}

// BuildChargeScheduleVars assembles the variable table for a charge reminder.
func BuildChargeScheduleVars(in ChargeVariableInput) map[string]string {
	vars := baseCustomerVars(in.Customer, in.EmpresaName)

	// Due date: the linked item's expiry when present, otherwise derived from
	// the schedule's own anchor (scheduled_for minus the signed offset).
	dueDate := in.Schedule.ScheduledFor.AddDate(0, 0, -in.Schedule.DayOffset)
	linkTarget := in.Schedule.ID
	if in.Item != nil {
		vars["valor"] = FormatCurrency(in.Item.Price)
		vars["produto"] = in.Item.ProductName
		if in.Item.ExpiresAt != nil {
			dueDate = *in.Item.ExpiresAt
		}
		linkTarget = in.Item.ID
	}
	vars["vencimento"] = FormatDate(dueDate)
	vars["link_pagamento"] = paymentLink(in.LinkBase, linkTarget)
	return vars
}

// MessageVariableInput carries the inputs for an ad-hoc scheduled message.
type MessageVariableInput struct {
	Customer    *models.Customer
	Message     *models.ScheduledMessage
	EmpresaName string
	LinkBase    string
}

// BuildScheduledMessageVars assembles the variable table for a scheduled
// message.
func BuildScheduledMessageVars(in MessageVariableInput) map[string]string {
	vars := baseCustomerVars(in.Customer, in.EmpresaName)
	vars["link_pagamento"] = paymentLink(in.LinkBase, in.Message.CustomerID)
	return vars
}

func baseCustomerVars(customer *models.Customer, empresaName string) map[string]string {
	if empresaName == "" {
		empresaName = EmpresaFallback
	}
	vars := map[string]string{
		"empresa": empresaName,
	}
	if customer != nil {
		vars["nome"] = customer.Name
		vars["primeiro_nome"] = customer.FirstName()
		vars["telefone"] = customer.Phone
		vars["email"] = customer.Email
	}
	return vars
}

func paymentLink(base, target string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/pagar/" + target
}
