package expansion

// Curated expansion tables. The base-term map pairs Portuguese and English
// industry-standard titles so searches hit both local and international
// postings. Kept as package data so the lists can evolve without touching
// the expansion logic.

var roleVariants = map[string][]string{
	// Technology
	"desenvolvedor": {
		"Software Engineer",
		"Desenvolvedor de Software",
		"Full Stack Developer",
		"Backend Developer",
		"Frontend Developer",
		"Engenheiro de Software",
		"Software Developer",
		"Programador",
	},
	"analista": {
		"Analista de Sistemas",
		"Systems Analyst",
		"Business Analyst",
		"Analista de Negócios",
		"Data Analyst",
		"Analista de Dados",
		"Analista de TI",
	},
	"devops": {
		"DevOps Engineer",
		"Site Reliability Engineer",
		"SRE",
		"Infrastructure Engineer",
		"Cloud Engineer",
		"Platform Engineer",
	},
	"data": {
		"Data Scientist",
		"Data Engineer",
		"Analytics Engineer",
		"Machine Learning Engineer",
		"ML Engineer",
		"BI Analyst",
		"Business Intelligence",
	},

	// Management
	"gerente": {
		"Manager",
		"Gerente de Projetos",
		"Project Manager",
		"Product Manager",
		"Team Lead",
		"Tech Lead",
		"Coordenador",
	},
	"coordenador": {
		"Coordinator",
		"Team Lead",
		"Supervisor",
		"Líder de Equipe",
		"Gestor",
	},

	// Marketing
	"marketing": {
		"Marketing Analyst",
		"Digital Marketing",
		"Growth Marketing",
		"Marketing Manager",
		"Social Media Manager",
		"Content Marketing",
		"Performance Marketing",
	},

	// Design
	"designer": {
		"UX Designer",
		"UI Designer",
		"Product Designer",
		"UX/UI Designer",
		"Visual Designer",
		"Web Designer",
		"Graphic Designer",
	},

	// Sales
	"vendas": {
		"Sales Executive",
		"Account Executive",
		"Business Development",
		"Sales Representative",
		"Inside Sales",
		"Vendedor",
		"Consultor de Vendas",
	},

	// Support
	"suporte": {
		"Support Analyst",
		"Customer Success",
		"Technical Support",
		"Help Desk",
		"Service Desk",
		"Customer Support",
	},
}

// seniorityMarkers detect whether a role already names a level.
var seniorityMarkers = map[string][]string{
	"junior": {"junior", "jr", "entry level", "júnior", "trainee", "estágio", "estagio"},
	"mid":    {"pleno", "mid level", "mid-level", "intermediate"},
	"senior": {"senior", "sr", "sênior", "lead", "principal", "staff"},
}

// areaPrefixes decorate top variants with area-specific terms.
var areaPrefixes = map[string][]string{
	"tecnologia": {"Tech", "IT", "Software", "Digital", "Development"},
	"marketing":  {"Marketing", "Growth", "Digital", "Brand", "Content"},
	"vendas":     {"Sales", "Commercial", "Business", "Revenue"},
	"financeiro": {"Finance", "Financial", "Accounting", "Treasury"},
	"rh":         {"HR", "People", "Talent", "Human Resources"},
	"operacoes":  {"Operations", "Ops", "Process", "Supply Chain"},
}

// technicalAreas get English generic variants in the fallback path.
var technicalAreas = map[string]bool{
	"tecnologia": true,
	"tech":       true,
	"ti":         true,
}

// relatedRoles suggests adjacent titles to widen a search.
var relatedRoles = map[string][]string{
	"desenvolvedor": {"arquiteto de software", "tech lead", "engenheiro de dados"},
	"analista":      {"coordenador", "especialista", "consultor"},
	"designer":      {"diretor de arte", "ux researcher", "product designer"},
	"gerente":       {"diretor", "head", "coordenador"},
	"vendedor":      {"account manager", "business development", "customer success"},
}

// metroRegions is the non-LLM fallback for location expansion, keyed by
// major city. Each entry lists the closest metro cities in commute order.
var metroRegions = map[string][]string{
	"são paulo":      {"Guarulhos, SP", "São Bernardo do Campo, SP", "Santo André, SP", "Osasco, SP"},
	"rio de janeiro": {"Niterói, RJ", "São Gonçalo, RJ", "Duque de Caxias, RJ", "Nova Iguaçu, RJ"},
	"belo horizonte": {"Contagem, MG", "Betim, MG", "Nova Lima, MG", "Ribeirão das Neves, MG"},
	"porto alegre":   {"Canoas, RS", "Gravataí, RS", "Viamão, RS", "Novo Hamburgo, RS"},
	"curitiba":       {"São José dos Pinhais, PR", "Colombo, PR", "Araucária, PR", "Pinhais, PR"},
	"campinas":       {"Jundiaí, SP", "Americana, SP", "Sumaré, SP", "Hortolândia, SP"},
	"brasília":       {"Taguatinga, DF", "Ceilândia, DF", "Águas Claras, DF", "Samambaia, DF"},
}

// remoteLocations is the fixed expansion for remote searches: a global
// marker plus the country's main tech hubs, relevance decreasing.
var remoteLocations = []remoteHub{
	{"Remote", 1.0, "Global search for remote openings"},
	{"Brasil", 0.95, "Country-wide remote openings"},
	{"São Paulo, SP", 0.9, "Main technology hub"},
	{"Rio de Janeiro, RJ", 0.85, "Second largest tech hub"},
	{"Belo Horizonte, MG", 0.8, "Emerging startup hub"},
}

type remoteHub struct {
	name      string
	relevance float64
	rationale string
}
