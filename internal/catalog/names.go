package catalog

// Given-name pools by gender, plus shared family names. Drawn with the
// NPC's personal stream so a seed always yields the same person.

var GivenNamesFemale = []string{
	"Aeryn", "Brenna", "Cassia", "Delia", "Eira", "Fenna", "Greta",
	"Halla", "Isolde", "Jora", "Keshet", "Liora", "Maeve", "Nessa",
	"Odile", "Petra", "Quilla", "Rosalind", "Sable", "Tamsin",
	"Una", "Vesna", "Wren", "Yara", "Zinnia",
}

var GivenNamesMale = []string{
	"Alden", "Bram", "Caspian", "Darrow", "Edric", "Fenwick", "Garrick",
	"Hale", "Ivo", "Jarek", "Kellen", "Lorcan", "Marek", "Nils",
	"Osric", "Piers", "Quentin", "Rowan", "Soren", "Thane",
	"Ulric", "Varek", "Wendell", "Yorick", "Zeph",
}

var FamilyNames = []string{
	"Ashdown", "Blackwood", "Coldwater", "Dunmore", "Eastgate",
	"Fairweather", "Greenfield", "Hollowell", "Ironside", "Kestrel",
	"Longbridge", "Marsh", "Nightingale", "Oakhurst", "Pennyworth",
	"Quickstep", "Ravenscroft", "Stonewall", "Thornbury", "Underhill",
	"Vance", "Whitmore", "Yarrow",
}
