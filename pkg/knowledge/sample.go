package knowledge

import "context"

var sampleDocs = []Document{
	{
		Source:  "renewable_energy",
		Content: "Renewable energy sources like solar, wind, and hydroelectric power offer numerous benefits including reduced greenhouse gas emissions, energy independence, and long-term cost savings. Solar energy harnesses sunlight through photovoltaic panels, while wind energy uses turbines to convert wind motion into electricity. Hydroelectric power generates electricity from flowing water. These sources are sustainable and have minimal environmental impact compared to fossil fuels.",
	},
	{
		Source:  "climate_change",
		Content: "Climate change refers to long-term shifts in temperatures and weather patterns. Human activities, particularly burning fossil fuels like coal, oil, and gas, have been the main driver of climate change since the 1800s. The consequences include rising sea levels, more extreme weather events, and biodiversity loss. Mitigation strategies include transitioning to renewable energy, improving energy efficiency, and adopting sustainable agricultural practices.",
	},
	{
		Source:  "sustainability",
		Content: "Sustainability means meeting our own needs without compromising the ability of future generations to meet theirs. It has three pillars: environmental, social, and economic. Environmental sustainability involves reducing carbon footprint, conserving resources, and protecting ecosystems. Social sustainability focuses on human rights, labor rights, and community development. Economic sustainability involves creating long-term economic value without negative social or environmental impacts.",
	},
	{
		Source:  "solar_energy",
		Content: "Solar power installation costs have decreased by over 80% in the past decade, making it increasingly competitive with traditional energy sources. The levelized cost of electricity from solar photovoltaics is now lower than fossil fuels in many regions. Government incentives and technological advancements continue to drive adoption of solar energy worldwide.",
	},
	{
		Source:  "wind_energy",
		Content: "Wind energy capacity has grown exponentially globally, with offshore wind farms becoming increasingly common. Modern wind turbines can generate enough electricity to power hundreds of homes. Wind power is now one of the cheapest energy sources in many markets and creates numerous jobs in manufacturing, installation, and maintenance.",
	},
}

// SeedSample loads the bundled sample corpus if the store is empty.
// Returns the number of documents added.
func (s *Store) SeedSample(ctx context.Context) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	if err := s.Add(ctx, sampleDocs); err != nil {
		return 0, err
	}
	return len(sampleDocs), nil
}
