package mapping

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/domain"
)

func TestNameSimilarity_ExactMatch(t *testing.T) {
	require.Equal(t, 1.0, nameSimilarity("email", "email"))
}

func TestNameSimilarity_CloseVariant(t *testing.T) {
	score := nameSimilarity("user_email", "email")
	require.Greater(t, score, 0.3)
}

func TestBestCategory_EmailColumn(t *testing.T) {
	cat, score := BestCategory("email_address")
	require.Equal(t, "email", cat)
	require.Greater(t, score, 0.5)
}

func TestBestCategory_PhoneColumn(t *testing.T) {
	cat, _ := BestCategory("phone_number")
	require.Equal(t, "phone", cat)
}

func TestNumericSampler_StaysWithinBounds(t *testing.T) {
	d := domain.Domain{Kind: domain.KindNumeric, Min: 18, Max: 30, HasMin: true, HasMax: true, InclusiveMin: true, InclusiveMax: true}
	s := NumericSampler(d, false, 0)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := s.Sample(rng)
		f, ok := v.Numeric()
		require.True(t, ok)
		require.GreaterOrEqual(t, f, 18.0)
		require.LessOrEqual(t, f, 30.0)
	}
}

func TestEnumSampler_OnlyReturnsGivenValues(t *testing.T) {
	s := EnumSampler([]string{"admin", "user"})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		v := s.Sample(rng)
		require.Contains(t, []string{"admin", "user"}, v.Str)
	}
}

func TestSerialSampler_ProducesDenseIncreasingIDs(t *testing.T) {
	s := SerialSampler()
	rng := rand.New(rand.NewSource(1))
	prev := int64(0)
	for i := 0; i < 10; i++ {
		v := s.Sample(rng)
		require.Equal(t, prev+1, v.Int)
		prev = v.Int
	}
}

func TestRegexSampler_KnownISBNPattern(t *testing.T) {
	d := domain.Domain{RegexSrc: `^[0-9]{13}$`}
	s := RegexSampler(d, 13)
	rng := rand.New(rand.NewSource(1))
	v := s.Sample(rng)
	require.Len(t, v.Str, 13)
}

func TestForColumn_SerialColumnGetsSerialSampler(t *testing.T) {
	col := &ddl.ColumnDef{Name: "id", Type: ddl.TypeTag{Kind: ddl.SERIAL}, Nullable: false}
	s := ForColumn(col, domain.Domain{}, 0.5, time.Now())
	rng := rand.New(rand.NewSource(1))
	v := s.Sample(rng)
	require.Equal(t, int64(1), v.Int)
}

func TestForColumn_EmailLikeColumnGetsRealisticSampler(t *testing.T) {
	col := &ddl.ColumnDef{Name: "email", Type: ddl.TypeTag{Kind: ddl.VARCHAR, Length: 255}, Nullable: false}
	s := ForColumn(col, domain.Domain{Kind: domain.KindString}, 0.5, time.Now())
	rng := rand.New(rand.NewSource(1))
	v := s.Sample(rng)
	require.Contains(t, v.Str, "@")
}
