package seed

import "properly.homes/backend/internal/constant"

type planSeed struct {
	Code              string
	Name              string
	MonthlyPriceCents int64
	ListingLimit      int
	FeaturedQuota     int
	Features          []string
}

var plans = []planSeed{
	{
		Code:              constant.PlanCodeBronze,
		Name:              "Bronze",
		MonthlyPriceCents: 4900,
		ListingLimit:      5,
		FeaturedQuota:     0,
		Features:          []string{"5 active listings", "Agent profile page", "Email inquiries"},
	},
	{
		Code:              constant.PlanCodeSilver,
		Name:              "Silver",
		MonthlyPriceCents: 9900,
		ListingLimit:      20,
		FeaturedQuota:     2,
		Features:          []string{"20 active listings", "2 featured listings", "Agent profile page", "Email inquiries", "Listing statistics"},
	},
	{
		Code:              constant.PlanCodeGold,
		Name:              "Gold",
		MonthlyPriceCents: 19900,
		ListingLimit:      constant.UnlimitedListings,
		FeaturedQuota:     10,
		Features:          []string{"Unlimited listings", "10 featured listings", "Priority placement", "Dedicated account manager"},
	},
}

type citySeed struct {
	Name      string
	Latitude  float64
	Longitude float64
}

type regionSeed struct {
	Name   string
	Cities []citySeed
}

type countrySeed struct {
	ISOCode string
	Name    string
	Regions []regionSeed
}

var locations = []countrySeed{
	{ISOCode: "FR", Name: "France", Regions: []regionSeed{
		{Name: "Île-de-France", Cities: []citySeed{{"Paris", 48.8566, 2.3522}, {"Versailles", 48.8049, 2.1204}}},
		{Name: "Provence-Alpes-Côte d'Azur", Cities: []citySeed{{"Nice", 43.7102, 7.2620}, {"Cannes", 43.5528, 7.0174}, {"Saint-Tropez", 43.2727, 6.6406}, {"Antibes", 43.5808, 7.1251}}},
		{Name: "Auvergne-Rhône-Alpes", Cities: []citySeed{{"Courchevel", 45.4154, 6.6347}, {"Megève", 45.8567, 6.6175}, {"Lyon", 45.7640, 4.8357}}},
		{Name: "Nouvelle-Aquitaine", Cities: []citySeed{{"Bordeaux", 44.8378, -0.5792}, {"Biarritz", 43.4832, -1.5586}}},
	}},
	{ISOCode: "ES", Name: "Spain", Regions: []regionSeed{
		{Name: "Catalonia", Cities: []citySeed{{"Barcelona", 41.3874, 2.1686}}},
		{Name: "Balearic Islands", Cities: []citySeed{{"Palma", 39.5696, 2.6502}, {"Ibiza", 38.9067, 1.4206}}},
		{Name: "Andalusia", Cities: []citySeed{{"Marbella", 36.5101, -4.8825}, {"Seville", 37.3891, -5.9845}}},
		{Name: "Community of Madrid", Cities: []citySeed{{"Madrid", 40.4168, -3.7038}}},
	}},
	{ISOCode: "CH", Name: "Switzerland", Regions: []regionSeed{
		{Name: "Geneva", Cities: []citySeed{{"Geneva", 46.2044, 6.1432}}},
		{Name: "Vaud", Cities: []citySeed{{"Lausanne", 46.5197, 6.6323}, {"Montreux", 46.4312, 6.9107}}},
		{Name: "Zurich", Cities: []citySeed{{"Zurich", 47.3769, 8.5417}}},
		{Name: "Graubünden", Cities: []citySeed{{"St. Moritz", 46.4908, 9.8355}}},
		{Name: "Valais", Cities: []citySeed{{"Verbier", 46.0964, 7.2286}, {"Zermatt", 46.0207, 7.7491}}},
	}},
	{ISOCode: "IT", Name: "Italy", Regions: []regionSeed{
		{Name: "Lombardy", Cities: []citySeed{{"Milan", 45.4642, 9.1900}, {"Como", 45.8081, 9.0852}}},
		{Name: "Tuscany", Cities: []citySeed{{"Florence", 43.7696, 11.2558}, {"Forte dei Marmi", 43.9626, 10.1740}}},
		{Name: "Lazio", Cities: []citySeed{{"Rome", 41.9028, 12.4964}}},
		{Name: "Campania", Cities: []citySeed{{"Capri", 40.5532, 14.2222}, {"Positano", 40.6281, 14.4850}}},
		{Name: "Sardinia", Cities: []citySeed{{"Porto Cervo", 41.1350, 9.5350}}},
	}},
	{ISOCode: "MC", Name: "Monaco", Regions: []regionSeed{
		{Name: "Monaco", Cities: []citySeed{{"Monte Carlo", 43.7396, 7.4276}, {"Fontvieille", 43.7275, 7.4150}}},
	}},
	{ISOCode: "US", Name: "United States", Regions: []regionSeed{
		{Name: "New York", Cities: []citySeed{{"New York", 40.7128, -74.0060}, {"The Hamptons", 40.9634, -72.1848}}},
		{Name: "California", Cities: []citySeed{{"Los Angeles", 34.0522, -118.2437}, {"Beverly Hills", 34.0736, -118.4004}, {"San Francisco", 37.7749, -122.4194}}},
		{Name: "Florida", Cities: []citySeed{{"Miami", 25.7617, -80.1918}, {"Palm Beach", 26.7056, -80.0364}}},
		{Name: "Colorado", Cities: []citySeed{{"Aspen", 39.1911, -106.8175}}},
	}},
	{ISOCode: "GB", Name: "United Kingdom", Regions: []regionSeed{
		{Name: "England", Cities: []citySeed{{"London", 51.5074, -0.1278}, {"Oxford", 51.7520, -1.2577}}},
		{Name: "Scotland", Cities: []citySeed{{"Edinburgh", 55.9533, -3.1883}}},
	}},
}
