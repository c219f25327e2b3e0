package wedding

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"venue-tagger/internal/services/llm"
)

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators, e.g. 25000 -> "25,000".
func formatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

const planSchema = `{
  "receptionDinner": {
    "name": "Venue Name",
    "address": "Full address",
    "price": "$X,XXX - $X,XXX",
    "website": "https://website.com" OR "phone": "phone number"
  },
  "welcomeParty": {
    "name": "Venue Name",
    "address": "Full address",
    "price": "$X,XXX - $X,XXX",
    "website": "https://website.com" OR "phone": "phone number"
  },
  "catering": {
    "company": "Catering Company Name",
    "address": "Full address",
    "price": "$XX per person",
    "website": "https://website.com" OR "phone": "phone number"
  },
  "weddingLocations": [
    {
      "name": "Ceremony Venue 1",
      "address": "Full address",
      "price": "$X,XXX - $X,XXX",
      "website": "https://website.com" OR "phone": "phone number"
    },
    {
      "name": "Ceremony Venue 2",
      "address": "Full address",
      "price": "$X,XXX - $X,XXX",
      "website": "https://website.com" OR "phone": "phone number"
    },
    {
      "name": "Ceremony Venue 3",
      "address": "Full address",
      "price": "$X,XXX - $X,XXX",
      "website": "https://website.com" OR "phone": "phone number"
    }
  ],
  "receptionLocation": {
    "name": "Reception Venue Name",
    "address": "Full address",
    "price": "$X,XXX - $X,XXX",
    "website": "https://website.com" OR "phone": "phone number"
  },
  "afterPartyLocation": {
    "name": "After Party Venue Name",
    "address": "Full address",
    "price": "$XXX - $X,XXX",
    "website": "https://website.com" OR "phone": "phone number"
  },
  "estimatedBudget": {
    "total": "Total estimated cost range",
    "breakdown": {
      "ceremony": "Estimated ceremony costs",
      "reception": "Estimated reception costs",
      "catering": "Estimated catering costs",
      "welcomeParty": "Estimated welcome party costs",
      "afterParty": "Estimated after party costs"
    }
  }
}`

const (
	catererFormat = `Return in JSON format: {"company": "name", "address": "address", "price": "price", "website": "url" OR "phone": "number"}`
	venuesFormat  = `Return as an array of 3 different venue options: [{"name": "venue name", "address": "address", "price": "price", "website": "url" OR "phone": "number"}, ...]`
	venueFormat   = `Return in JSON format: {"name": "venue name", "address": "address", "price": "price", "website": "url" OR "phone": "number"}`
)

func planPrompt(location string, budget, attendees *int64) []llm.Message {
	budgetLine := "Please provide estimated booking costs for each venue."
	if b, ok := positive(budget); ok {
		budgetLine = fmt.Sprintf("The couple has a maximum budget of $%s. Please ensure all recommendations fit within this budget and provide specific booking prices.", formatCount(b))
	}
	attendeesLine := "Please consider typical wedding guest counts when recommending venues."
	if a, ok := positive(attendees); ok {
		attendeesLine = fmt.Sprintf("The wedding will have approximately %s guests. Please ensure all venue recommendations can accommodate this number of people.", formatCount(a))
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Find bookable wedding venues near %s. %s %s Provide recommendations in this exact JSON format:\n\n", location, budgetLine, attendeesLine)
	user.WriteString(planSchema)
	user.WriteString("\n\nIMPORTANT:\n")
	fmt.Fprintf(&user, "- Include ONLY real, bookable venues near %s\n", location)
	user.WriteString("- Provide actual venue names, not generic descriptions\n")
	user.WriteString("- Include website URLs when available, phone numbers when websites aren't available\n")
	user.WriteString("- Focus on venues that can actually be booked for weddings\n")
	user.WriteString("- Provide realistic pricing estimates\n")
	fmt.Fprintf(&user, "- %s\n- %s", budgetLine, attendeesLine)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf("You are a wedding venue booking specialist. Provide ONLY venue names, addresses, estimated booking prices, and contact information. DO NOT include descriptions or summaries. Focus on bookable venues with real contact details. %s %s", budgetLine, attendeesLine)},
		{Role: llm.RoleSystem, Content: "You will provide wedding venue booking information in a structured JSON format. Include only essential booking details: venue name, address, price, website URL (if available), or phone number."},
		{Role: llm.RoleUser, Content: user.String()},
	}
}

func refreshPrompt(location string, budget, attendees *int64, section Section, current string) []llm.Message {
	name := section.DisplayName()

	budgetLine := "Please provide cost estimates for the new recommendation."
	budgetReq := "Cost-effective"
	if b, ok := positive(budget); ok {
		budgetLine = fmt.Sprintf("The couple has a maximum budget of $%s. Please ensure the new recommendation fits within this budget.", formatCount(b))
		budgetReq = fmt.Sprintf("Within the budget of $%s", formatCount(b))
	}
	attendeesLine := "Please consider typical wedding guest counts when recommending venues."
	attendeesReq := "Suitable for wedding guest counts"
	if a, ok := positive(attendees); ok {
		attendeesLine = fmt.Sprintf("The wedding will have approximately %s guests. Please ensure the venue can accommodate this number of people.", formatCount(a))
		attendeesReq = fmt.Sprintf("Can accommodate %s guests", formatCount(a))
	}

	format := venueFormat
	switch {
	case section == SectionCatering:
		format = catererFormat
	case section.IsList():
		format = venuesFormat
	}

	var user strings.Builder
	fmt.Fprintf(&user, "I'm planning a wedding near %s. %s %s\n\n", location, budgetLine, attendeesLine)
	fmt.Fprintf(&user, "Current %s: %s\n\n", name, current)
	fmt.Fprintf(&user, "Please provide a DIFFERENT %s option. Make sure it's:\n", name)
	user.WriteString("1. A completely different venue from the current one\n")
	fmt.Fprintf(&user, "2. Bookable and real venue near %s\n", location)
	fmt.Fprintf(&user, "3. %s\n", budgetReq)
	fmt.Fprintf(&user, "4. %s\n", attendeesReq)
	user.WriteString("5. Include actual venue name, address, pricing, and website/phone\n\n")
	user.WriteString(format)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf("You are a wedding venue booking specialist. Provide ONLY venue names, addresses, estimated booking prices, and contact information. DO NOT include descriptions or summaries. The user wants a different %s option.", name)},
		{Role: llm.RoleUser, Content: user.String()},
	}
}
