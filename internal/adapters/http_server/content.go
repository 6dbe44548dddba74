package httpserver

// Static copy for /tarieven and /tips.

type priceTier struct {
	Name  string
	Range string
	Notes []string
}

type note struct {
	Name string
	Text string
}

var tarieven = struct {
	Tiers  []priceTier
	Extras []note
}{
	Tiers: []priceTier{
		{
			Name:  "Daluren (Ma - Do)",
			Range: "€ 22,50 - € 29,50",
			Notes: []string{"Vaak goedkoper voor 18:00", "Rustiger op de banen"},
		},
		{
			Name:  "Piekuren (Vr - Zo)",
			Range: "€ 32,50 - € 45,00",
			Notes: []string{"Incl. Discobowlen in de avond", "Tijdig reserveren aangeraden"},
		},
	},
	Extras: []note{
		{"Schoenhuur", "Vaak is de huur van speciale bowlingschoenen inbegrepen in de baanhuur, maar sommige centra rekenen hier apart rond de € 2,00 tot € 3,50 per persoon voor."},
		{"Arrangementen", "Wil je bowlen combineren met eten? Kies dan voor een arrangement (bijv. steengrillen of bittergarnituur). Reken op € 35,- tot € 55,- per persoon voor 1 uur bowlen + diner."},
	},
}

var tips = struct {
	Rules []note
	Tips  []note
}{
	Rules: []note{
		{"De basis", "Een regulier spel (game) bestaat uit 10 beurten (frames). In elke beurt mag je maximaal twee keer gooien om alle 10 de pins om te krijgen. Elke omgegooide pin is 1 punt waard. Grote bonussen verdien je door Strikes of Spares te gooien."},
		{"Strike ( X )", "Gooi je in de eerste worp van een frame álle 10 de pins om? Dan heb je een Strike! Je krijgt 10 punten + de punten van je volgende 2 worpen als bonus bij deze beurt opgeteld."},
		{"Spare ( / )", "Heb je na twee worpen in één frame toch alle 10 de pins omgegooid? Dan heb je een Spare. Dit levert 10 punten op + de punten van je eerstvolgende ene worp."},
	},
	Tips: []note{
		{"Kies de juiste bal", "Kies een bal die niet te zwaar en niet te licht is. Een vuistregel: de bal zou ongeveer 10% van je lichaamsgewicht moeten zijn (tot een max van 16 pond). Zorg ook dat je vingers goed passen zonder te klemmen."},
		{"Kijk naar de pijlen, niet de pins", "Mikken op de pins aan het einde is erg lastig. Focus in plaats daarvan op de pijlen (arrows) die halverwege de baan op de vloer staan. Mik de bal recht over de tweede pijl vanaf rechts (voor rechtshandigen)."},
		{"Gooi rustig en gecontroleerd", "Snelheid is minder belangrijk dan richting. Neem een rustige aanloop (meestal 4 passen), zwaai je arm ontspannen recht naar achter en weer naar voor in een vloeiende beweging."},
	},
}
