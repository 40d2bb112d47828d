package pipeline

import "github.com/dgallion1/personadoc/internal/doctree"

func fixtureDoc(id string, text string) doctree.Document {
	return doctree.Document{ID: id, Title: id, Pages: doctree.SplitPages(id, text)}
}

// southOfFrance is a seven document travel corpus. Page breaks are form feeds.
func southOfFrance() []doctree.Document {
	return []doctree.Document{
		fixtureDoc("South of France - Cities.pdf", `Comprehensive Guide to Major Cities in the South of France

The South of France, known for its stunning landscapes, rich history and vibrant culture, is a captivating region that attracts travelers from around the world.
This guide covers the major cities of the region, their history, attractions and atmosphere. Whether you plan a trip to explore the old towns or simply to relax by the sea, it will help you decide which cities to visit.

Nice - The Pearl of the French Riviera
Nice is the capital of the Côte d'Azur and one of the largest cities on the coast. The Promenade des Anglais follows the Baie des Anges, and the old town is known for the flower market of the Cours Saleya.
`+"\f"+`Marseille - France's Oldest City
Marseille is a vibrant port city with a rich history dating back 2,600 years. The Old Port is lined with seafood restaurants and the Basilica of Notre-Dame de la Garde overlooks the harbor.

Avignon - The City of Popes
Avignon is known for the Palais des Papes and its summer theatre festival.
`),
		fixtureDoc("South of France - Cuisine.pdf", `Culinary Experiences in the South of France

Bouillabaisse
Bouillabaisse is a fish stew from Marseille made with saffron, fennel and several kinds of local fish.

Cooking Classes
Several schools in Provence offer cooking classes on regional dishes and market shopping.
`+"\f"+`Wine Tasting
The Côtes de Provence region is known for rosé. Cellars around Bandol and Cassis welcome visitors for tastings.
`),
		fixtureDoc("South of France - History.pdf", `A Historical Journey Through the South of France

Roman Heritage
Nîmes and Arles preserve amphitheatres, temples and aqueducts from the Roman period.

The Papal Period
In the fourteenth century the papacy moved to Avignon, leaving a palace that still dominates the city.
`),
		fixtureDoc("South of France - Restaurants and Hotels.pdf", `Restaurants and Hotels in the South of France

Budget-Friendly Restaurants
Socca stalls and bakeries in Nice sell filling food for a few euros.

Luxury Hotels
The Riviera has palace hotels with private beaches, spas and sea views.
`),
		fixtureDoc("South of France - Things to Do.pdf", `Ultimate Guide to Activities and Things to Do

Coastal Adventures
The coastline offers sandy beaches and hidden coves. Beach hopping between Nice and Antibes makes a fun day out.

Nightlife and Entertainment
The South of France offers a vibrant nightlife scene, with options ranging from chic bars to lively nightclubs. Saint-Tropez and Cannes are famous for beach clubs that stay open until dawn.
`),
		fixtureDoc("South of France - Tips and Tricks.pdf", `Practical Tips and Tricks

Packing Tips:
The weather can change between the coast and the hills, so pack layers, comfortable walking shoes, a reusable water bottle and a universal adapter for your electronics.

Transportation Tips:
Regional trains connect the coastal towns and are cheaper when booked early.
`),
		fixtureDoc("South of France - Traditions and Culture.pdf", `Traditions and Culture

Festivals
The Nice Carnival and the Cannes Film Festival draw visitors from around the world.

Lavender Fields
Lavender blooms in July across the Valensole plateau.
`),
	}
}
