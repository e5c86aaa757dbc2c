package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/http/dto"
)

// RunListSuites prints the registered algorithm suites as seen under policy. format is
// "text" or "json".
func RunListSuites(
	writer io.Writer,
	policy domain.CommitmentPolicy,
	defaultSuite domain.SuiteID,
	format string,
) error {
	response := dto.MapSuitesToListResponse(domain.Suites(), policy, defaultSuite)

	switch format {
	case "json":
		return writeJSON(writer, response)
	case "text", "":
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	if _, err := fmt.Fprintf(writer, "Commitment policy: %s\n\n", response.CommitmentPolicy); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIGNED\tCOMMITTING\tENCRYPT\tDECRYPT\tDEFAULT")
	for _, suite := range response.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			suite.ID, suite.Name,
			yesNo(suite.Signed), yesNo(suite.Committing),
			yesNo(suite.AllowsEncrypt), yesNo(suite.AllowsDecrypt),
			yesNo(suite.DefaultForWrite))
	}
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
