package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// retraceCmd applies the inverse of a residual mapping (spec §6, "retrace
// (apply inverse of mapping to a stack trace)") to a plain-text stack trace:
// every obfuscated class or member name the mapping file names is replaced
// by its original name. This is a name-substitution retrace, not a
// line-number-aware one — the residual mapping this module emits carries no
// source-line ranges, so there is nothing finer to retrace against.
var retraceCmd = &cobra.Command{
	Use:          "retrace <mapping-file> <stack-trace-file>",
	Short:        "reverse a residual mapping's renames in a stack trace",
	Args:         cobra.ExactArgs(2),
	RunE:         runRetrace,
	SilenceUsage: true,
}

func runRetrace(cmd *cobra.Command, args []string) error {
	mappingText, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "reading mapping file %s", args[0])
	}
	traceText, err := os.ReadFile(args[1])
	if err != nil {
		return errors.Wrapf(err, "reading stack trace file %s", args[1])
	}

	replacements := parseMappingReplacements(string(mappingText))
	fmt.Fprint(cmd.OutOrStdout(), applyReplacements(string(traceText), replacements))
	return nil
}

// parseMappingReplacements reads mapping.ResidualMap's text format and
// returns an obfuscated-name -> original-name table, class and member names
// together: "original -> obfuscated:" header lines name a class, and
// indented "signature -> obfuscated" lines name a member. Member names are
// looked up independent of class, since the mapping format carries no
// back-reference from a member line to its enclosing class once the text
// has been flattened into one table.
func parseMappingReplacements(mappingText string) map[string]string {
	replacements := map[string]string{}
	for _, line := range strings.Split(mappingText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		isHeader := !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t")
		trimmed = strings.TrimSuffix(trimmed, ":")

		parts := strings.SplitN(trimmed, " -> ", 2)
		if len(parts) != 2 {
			continue
		}
		original, obfuscated := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if isHeader {
			replacements[obfuscated] = original
			continue
		}
		// a member line's left side is "type name(params)" or "type name";
		// the member name itself is the token before '(' or the last token.
		original = memberNameOf(original)
		replacements[obfuscated] = original
	}
	return replacements
}

func memberNameOf(signature string) string {
	if idx := strings.IndexByte(signature, '('); idx >= 0 {
		signature = signature[:idx]
	}
	fields := strings.Fields(signature)
	return fields[len(fields)-1]
}

// applyReplacements substitutes every whole-word occurrence of an
// obfuscated name in text with its original counterpart. Longer names are
// substituted first so a short obfuscated class name (e.g. "a") cannot
// clobber part of a longer one that happens to contain it as a substring.
func applyReplacements(text string, replacements map[string]string) string {
	type pair struct{ from, to string }
	ordered := make([]pair, 0, len(replacements))
	for from, to := range replacements {
		ordered = append(ordered, pair{from, to})
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if len(ordered[j].from) > len(ordered[i].from) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	if len(ordered) == 0 {
		return text
	}
	alternatives := make([]string, len(ordered))
	for i, p := range ordered {
		alternatives[i] = regexp.QuoteMeta(p.from)
	}
	// one pass over the original text, so a substituted name is never
	// rescanned for further matches.
	pattern := regexp.MustCompile(`\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	return pattern.ReplaceAllStringFunc(text, func(name string) string { return replacements[name] })
}
