package mapping

import (
	"fmt"
	"math/rand"

	"github.com/seedforge/seedforge/internal/expr"
)

// category is a recognized realistic-value generator keyed by a canonical
// name and a handful of aliases that column names commonly take.
type category struct {
	name    string
	aliases []string
	gen     func(rng *rand.Rand) string
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Priya", "Wei", "Fatima", "Noah",
	"Sofia", "Lucas", "Mei", "Amara",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Patel", "Kim", "Chen", "Nguyen", "Okafor", "Silva",
}

var cities = []string{
	"Springfield", "Riverside", "Fairview", "Georgetown", "Salem", "Madison",
	"Arlington", "Franklin", "Clinton", "Greenville", "Bristol", "Auburn",
}

var streetNames = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Park Rd", "Elm St",
	"Washington Ave", "Lake Dr", "Hill St", "River Rd",
}

var emailDomains = []string{"example.com", "mail.com", "testmail.org", "inbox.dev"}

var categories = []category{
	{"email", []string{"mail", "emailaddress"}, genEmail},
	{"first_name", []string{"firstname", "givenname", "fname"}, genFirstName},
	{"last_name", []string{"lastname", "surname", "familyname", "lname"}, genLastName},
	{"full_name", []string{"name", "fullname", "customername", "username"}, genFullName},
	{"phone", []string{"phonenumber", "telephone", "mobile", "cell"}, genPhone},
	{"city", []string{"town", "municipality"}, genCity},
	{"street_address", []string{"address", "streetaddress", "addr"}, genStreetAddress},
	{"zip_code", []string{"zipcode", "postalcode", "postcode"}, genZip},
	{"country", []string{"nation"}, genCountry},
	{"isbn", []string{"isbncode"}, genISBN},
	{"url", []string{"website", "link", "homepage"}, genURL},
	{"uuid", []string{"guid"}, genUUID},
}

func genEmail(rng *rand.Rand) string {
	f := firstNames[rng.Intn(len(firstNames))]
	l := lastNames[rng.Intn(len(lastNames))]
	return fmt.Sprintf("%s.%s%d@%s", lower(f), lower(l), rng.Intn(1000), emailDomains[rng.Intn(len(emailDomains))])
}

func genFirstName(rng *rand.Rand) string { return firstNames[rng.Intn(len(firstNames))] }
func genLastName(rng *rand.Rand) string  { return lastNames[rng.Intn(len(lastNames))] }
func genFullName(rng *rand.Rand) string {
	return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
}

func genPhone(rng *rand.Rand) string {
	return fmt.Sprintf("(%03d) %03d-%04d", 200+rng.Intn(800), rng.Intn(1000), rng.Intn(10000))
}

func genCity(rng *rand.Rand) string { return cities[rng.Intn(len(cities))] }

func genStreetAddress(rng *rand.Rand) string {
	return fmt.Sprintf("%d %s", 1+rng.Intn(9999), streetNames[rng.Intn(len(streetNames))])
}

func genZip(rng *rand.Rand) string { return fmt.Sprintf("%05d", rng.Intn(100000)) }

var countries = []string{"United States", "Canada", "Germany", "Japan", "Brazil", "India", "Nigeria", "Australia"}

func genCountry(rng *rand.Rand) string { return countries[rng.Intn(len(countries))] }

func genISBN(rng *rand.Rand) string { return randomDigits(rng, 13) }

func genURL(rng *rand.Rand) string {
	return fmt.Sprintf("https://www.example-%d.com", rng.Intn(100000))
}

func genUUID(rng *rand.Rand) string {
	b := make([]byte, 16)
	rng.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// BestCategory fuzzy-matches colName against the known category names and
// aliases, returning the closest one and its similarity score.
func BestCategory(colName string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range categories {
		candidates := append([]string{c.name}, c.aliases...)
		for _, cand := range candidates {
			score := nameSimilarity(colName, cand)
			if score > bestScore {
				bestScore = score
				best = c.name
			}
		}
	}
	return best, bestScore
}

// RealisticSampler returns the generator for a category name resolved via
// BestCategory. An unrecognized category falls back to random alnum text.
func RealisticSampler(categoryName string) Sampler {
	for _, c := range categories {
		if c.name == categoryName {
			gen := c.gen
			return SamplerFunc(func(rng *rand.Rand) expr.Value {
				return expr.StringVal(gen(rng))
			})
		}
	}
	return StringSampler(16)
}
