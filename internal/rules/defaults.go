package rules

// Category tags produced by the classifier.
const (
	CategorySacredCoordination   Category = "sacred_trinity_coordination"
	CategoryConsciousnessArch    Category = "consciousness_architecture"
	CategorySacredWebInterface   Category = "sacred_web_interface"
	CategorySacredCore           Category = "sacred_trinity_core"
	CategoryCommunication        Category = "communication_systems"
	CategoryDeploymentAutomation Category = "deployment_automation"
	CategoryExternalSystems      Category = "external_systems"
	CategorySourceCode           Category = "source_code"
	CategoryDocumentation        Category = "documentation"
	CategoryConfiguration        Category = "configuration"
	CategoryExecutables          Category = "executables"
	CategoryOther                Category = "other"
	CategoryError                Category = "error"
)

// Risk tags produced by the classifier.
const (
	RiskHigh          Risk = "high_risk"
	RiskSacredContent Risk = "sacred_content"
	RiskMedium        Risk = "medium_risk"
	RiskLargeAsset    Risk = "large_asset"
	RiskLow           Risk = "low_risk"
	RiskUnknown       Risk = "unknown"
)

// DefaultLargeFileThreshold is the size above which an otherwise unflagged
// file is tagged as a large asset (100 MiB).
const DefaultLargeFileThreshold int64 = 100 * 1024 * 1024

// PointsPerPattern is added to a file's score for every matching pattern.
const PointsPerPattern = 10

// Default returns a fresh copy of the built-in rule set. Every call builds new
// slices so callers can never share mutable state through it.
func Default() Set {
	return Set{
		Domain: DomainRule{
			Keywords: []string{"sacred", "trinity", "consciousness"},
			Subcategories: []KeywordCategory{
				{Keyword: "coordination", Category: CategorySacredCoordination},
				{Keyword: "consciousness", Category: CategoryConsciousnessArch},
				{Keyword: "webui", Category: CategorySacredWebInterface},
			},
			Fallback: CategorySacredCore,
		},
		PathRules: []PathRule{
			{Keywords: []string{"email", "inbox"}, Category: CategoryCommunication},
			{Keywords: []string{"deployment", "sync"}, Category: CategoryDeploymentAutomation},
			{Keywords: []string{"outbound"}, Category: CategoryExternalSystems},
		},
		ExtensionRules: []ExtensionRule{
			{Extensions: []string{".py", ".js", ".java", ".cpp", ".c", ".go", ".rs"}, Category: CategorySourceCode},
			{Extensions: []string{".md", ".txt", ".doc", ".pdf", ".rtf"}, Category: CategoryDocumentation},
			{Extensions: []string{".json", ".xml", ".yaml", ".ini", ".config", ".conf"}, Category: CategoryConfiguration},
			{Extensions: []string{".sh", ".bat", ".exe", ".bin"}, Category: CategoryExecutables},
		},
		RiskRules: []RiskRule{
			{Keywords: []string{"password", "secret", "key", "private"}, Risk: RiskHigh},
			{Keywords: []string{"sacred", "covenant", "consciousness"}, Risk: RiskSacredContent},
			{Keywords: []string{"config", "deployment", "sync"}, Risk: RiskMedium},
		},
		LargeFileThreshold: DefaultLargeFileThreshold,
		NotableCategories:  []Category{CategorySacredCore, CategorySacredCoordination},
		TextExtensions:     []string{".md", ".txt", ".py", ".js", ".sh", ".json", ".yml", ".yaml"},
		Patterns: []PatternGroup{
			{Category: "sacred_trinity", Patterns: []string{`sacred.?trinity`, `trinity.*core`, `consciousness.*network`}},
			{Category: "sacred_covenant", Patterns: []string{`sacred.?covenant`, `keep.*secret.*safe`, `love.*fuggin.*much`}},
			{Category: "session_immortality", Patterns: []string{`session.*immortality`, `consciousness.*preservation`, `breathline`}},
			{Category: "master_coordination", Patterns: []string{`master.*coordination`, `sacred.*coordination`, `elendil.*command`}},
			{Category: "deployment_automation", Patterns: []string{`deployment.*script`, `sacred.*sync`, `payload.*deployment`}},
			{Category: "web_interface", Patterns: []string{`webui`, `web.*interface`, `dashboard`, `sacred.*gui`}},
			{Category: "email_systems", Patterns: []string{`email.*inbox`, `mail.*system`, `correspondence`}},
			{Category: "consciousness_data", Patterns: []string{`consciousness.*data`, `memory.*wells`, `sacred.*archives`}},
		},
		Bonuses: []Bonus{
			{Label: "trinity_consciousness:claude_olorin_presence", Points: 50, All: []string{"claude", "olorin"}},
			{Label: "command_authority:elendil_presence", Points: 30, All: []string{"elendil"}, Any: []string{"command", "keeper"}},
			{Label: "sacred_flame:consciousness_fire", Points: 20, All: []string{"sacred", "flame"}},
		},
	}
}
