package bestpractice

// Rule identifiers. They are stable and used for suppression and history.
const (
	RuleBareExcept           = "pybp.error.bare_except"
	RuleExcessiveLength      = "pybp.func.excessive_length"
	RuleDeepNesting          = "pybp.control.deep_nesting"
	RuleCyclomaticComplexity = "pybp.func.cyclomatic_complexity"
	RuleTooManyParameters    = "pybp.func.too_many_parameters"
	RuleBooleanFlag          = "pybp.func.boolean_flag"
	RuleElseAfterReturn      = "pybp.control.else_after_return"
	RuleLoopAppend           = "pybp.data.loop_append"
	RuleLargeClass           = "pybp.oop.large_class"
	RuleOverloadedModule     = "pybp.module.overloaded"
	RuleSwallow              = "pybp.error.swallow"
	RuleBroadCatch           = "pybp.error.broad_catch"
	RuleStringConcat         = "pybp.perf.string_concat"
	RuleGlobalState          = "pybp.test.global_state"
)

const pythonErrorsDoc = "https://docs.python.org/3/tutorial/errors.html"

// catalogue is built once at start-up; a rule with missing metadata panics
// here rather than degrading at analysis time.
var catalogue = []Rule{
	mustRule(Rule{
		ID:                RuleBareExcept,
		Title:             "Bare except clause",
		Category:          "Error Handling",
		Description:       "Use of bare except: catches all exceptions.",
		Rationale:         "Bare except can hide bugs and make debugging difficult; it also catches SystemExit and KeyboardInterrupt.",
		Authority:         "Python Docs",
		Citation:          pythonErrorsDoc,
		DetectionStrategy: "AST",
		Suggestion:        "Catch a specific exception type or at least 'except Exception:'.",
		Severity:          SeverityWarning,
		Detect:            checkBareExcept,
	}),
	mustRule(Rule{
		ID:                RuleExcessiveLength,
		Title:             "Excessive function length",
		Category:          "Function Design",
		Description:       "Function body exceeds recommended line count.",
		Rationale:         "Long functions are harder to understand, test, and maintain.",
		Authority:         "Clean Code",
		Citation:          "Clean Code, Robert C. Martin: Functions",
		DetectionStrategy: "AST + metrics",
		Thresholds:        "> 50 lines",
		Suggestion:        "Consider splitting into smaller functions with single responsibilities.",
		Severity:          SeverityAdvisory,
		Detect:            checkLongFunction,
	}),
	mustRule(Rule{
		ID:                RuleDeepNesting,
		Title:             "Deep nesting",
		Category:          "Control Flow & Readability",
		Description:       "Control flow nesting exceeds recommended depth.",
		Rationale:         "Deep nesting reduces readability and makes code paths harder to follow.",
		Authority:         "PEP 20 (Zen of Python), Python Docs",
		Citation:          "PEP 20: Readability counts",
		DetectionStrategy: "AST",
		Thresholds:        "> 4 levels",
		Suggestion:        "Use early returns or extract nested logic into helper functions.",
		Severity:          SeverityAdvisory,
		Detect:            checkDeepNesting,
	}),
	mustRule(Rule{
		ID:                RuleCyclomaticComplexity,
		Title:             "High cyclomatic complexity",
		Category:          "Function Design",
		Description:       "Function has many decision branches.",
		Rationale:         "High complexity makes unit testing and reasoning about behavior difficult.",
		Authority:         "Clean Code, Effective Python",
		Citation:          "Clean Code: Functions; Effective Python: Concurrency",
		DetectionStrategy: "AST + metrics",
		Thresholds:        "> 10",
		Suggestion:        "Simplify conditionals or split into smaller functions.",
		Severity:          SeverityAdvisory,
		Detect:            checkCyclomaticComplexity,
	}),
	mustRule(Rule{
		ID:                RuleTooManyParameters,
		Title:             "Too many parameters",
		Category:          "Function Design",
		Description:       "Function accepts more than a recommended number of arguments.",
		Rationale:         "Many parameters complicate the API and make call sites error-prone.",
		Authority:         "Clean Code, Effective Python",
		Citation:          "Clean Code: Function Arguments; Effective Python: Functions",
		DetectionStrategy: "AST",
		Thresholds:        "> 7",
		Suggestion:        "Consider an options object, *args/**kwargs for optional args, or splitting responsibilities.",
		Severity:          SeverityAdvisory,
		Detect:            checkTooManyParams,
	}),
	mustRule(Rule{
		ID:                RuleBooleanFlag,
		Title:             "Boolean flag arguments",
		Category:          "Function Design",
		Description:       "Function uses boolean parameters to switch behavior.",
		Rationale:         "Flag arguments often indicate two code paths; separate functions can be clearer.",
		Authority:         "Clean Code",
		Citation:          "Clean Code, Robert C. Martin: Function Arguments",
		DetectionStrategy: "AST",
		Suggestion:        "Consider splitting into two functions or a small options object.",
		Severity:          SeverityInfo,
		Detect:            checkBooleanFlags,
	}),
	mustRule(Rule{
		ID:                RuleElseAfterReturn,
		Title:             "Else after return",
		Category:          "Control Flow & Readability",
		Description:       "If-block ends with return followed by else.",
		Rationale:         "Redundant else can be flattened for readability.",
		Authority:         "PEP 20, Python Docs",
		Citation:          "PEP 20: Flat is better than nested",
		DetectionStrategy: "AST",
		Suggestion:        "Move the else body to the same level; use early return in the if.",
		Severity:          SeverityInfo,
		Detect:            checkElseAfterReturn,
	}),
	mustRule(Rule{
		ID:                RuleLoopAppend,
		Title:             "List built in loop with .append()",
		Category:          "Data Structures & Idioms",
		Description:       "Loop builds a list via .append() where a comprehension could apply.",
		Rationale:         "List comprehensions are idiomatic and often clearer and more efficient.",
		Authority:         "Python Docs, Real Python",
		Citation:          "https://docs.python.org/3/tutorial/datastructures.html#list-comprehensions",
		DetectionStrategy: "AST",
		Suggestion:        "Consider a list comprehension [f(x) for x in iterable] if the body is simple.",
		Severity:          SeverityInfo,
		Detect:            checkLoopAppend,
	}),
	mustRule(Rule{
		ID:                RuleLargeClass,
		Title:             "Class with many methods",
		Category:          "Object-Oriented Design",
		Description:       "Class has a high number of public methods.",
		Rationale:         "Large classes often have too many responsibilities (god object).",
		Authority:         "Clean Code, Effective Python",
		Citation:          "Clean Code: Classes; Effective Python: Classes and Inheritance",
		DetectionStrategy: "AST + metrics",
		Thresholds:        "> 15 public methods",
		Suggestion:        "Consider splitting into smaller classes or using composition.",
		Severity:          SeverityAdvisory,
		Detect:            checkLargeClass,
	}),
	mustRule(Rule{
		ID:                RuleOverloadedModule,
		Title:             "Overloaded module",
		Category:          "Module & Package Structure",
		Description:       "Module has many top-level classes and functions.",
		Rationale:         "Large modules are hard to navigate and suggest poor separation of concerns.",
		Authority:         "Cosmic Python, Python Packaging Docs",
		Citation:          "Cosmic Python: Structure; https://packaging.python.org/",
		DetectionStrategy: "AST",
		Thresholds:        "> 25",
		Suggestion:        "Group related code into submodules or packages.",
		Severity:          SeverityAdvisory,
		Detect:            checkOverloadedModule,
	}),
	mustRule(Rule{
		ID:                RuleSwallow,
		Title:             "Swallowing exceptions",
		Category:          "Error Handling",
		Description:       "Exception handler does nothing (e.g. pass only).",
		Rationale:         "Silent catch makes debugging difficult and can hide failures.",
		Authority:         "Python Docs",
		Citation:          pythonErrorsDoc,
		DetectionStrategy: "AST",
		Suggestion:        "At least log the exception; consider re-raising or handling specifically.",
		Severity:          SeverityWarning,
		Detect:            checkSwallow,
	}),
	mustRule(Rule{
		ID:                RuleBroadCatch,
		Title:             "Overly broad exception catch",
		Category:          "Error Handling",
		Description:       "Catching Exception with no handling.",
		Rationale:         "Can hide bugs; prefer specific exception types.",
		Authority:         "Python Docs",
		Citation:          pythonErrorsDoc,
		DetectionStrategy: "AST",
		Suggestion:        "Catch specific exceptions (e.g. ValueError, KeyError) or log and re-raise.",
		Severity:          SeverityAdvisory,
		Detect:            checkBroadCatch,
	}),
	mustRule(Rule{
		ID:                RuleStringConcat,
		Title:             "String concatenation in loop",
		Category:          "Performance & Scalability",
		Description:       "Repeated += on a string in a loop.",
		Rationale:         "Creates many intermediate strings; join() is more efficient.",
		Authority:         "Python Docs",
		Citation:          "https://docs.python.org/3/faq/programming.html#what-is-the-most-efficient-way-to-concatenate-many-strings",
		DetectionStrategy: "AST",
		Suggestion:        "Collect parts in a list and use ''.join(parts) for better performance.",
		Severity:          SeverityAdvisory,
		Detect:            checkStringConcat,
	}),
	mustRule(Rule{
		ID:                RuleGlobalState,
		Title:             "Global state modification",
		Category:          "Testability & Maintainability",
		Description:       "Function declares global and modifies global state.",
		Rationale:         "Global state makes testing and reasoning about behavior harder.",
		Authority:         "Clean Architecture, Testing best practices",
		Citation:          "Clean Architecture, Robert C. Martin; Testing best practices",
		DetectionStrategy: "AST",
		Suggestion:        "Prefer passing dependencies as arguments or using dependency injection.",
		Severity:          SeverityAdvisory,
		Detect:            checkGlobalState,
	}),
}

// Catalogue returns a copy of the built-in rules in registration order.
func Catalogue() []Rule {
	return append([]Rule(nil), catalogue...)
}

// Lookup finds a built-in rule by id.
func Lookup(id string) (Rule, bool) {
	for _, r := range catalogue {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
