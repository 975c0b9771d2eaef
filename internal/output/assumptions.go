package output

// ModelAssumptions lists the projection conventions rendered in detailed outputs.
var ModelAssumptions = []string{
	"Buckets grow for the full year before any withdrawal",
	"Taxable income is rental income plus the year's withdrawal; growth is not taxed",
	"Tax is withheld from the same buckets as the spending it funds",
	"Foreign buckets are converted at the year's exchange rate when valued or drawn",
	"The locked bucket counts toward the portfolio but not toward what can be withdrawn",
	"Reinvestment is deposited into a domestic bucket after growth and before withdrawals",
	"Foreign inflation is recorded with the plan but does not change any amount",
}
