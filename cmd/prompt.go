package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/bikeshare"
	"github.com/TFMV/bikeshare/query"
	"github.com/TFMV/bikeshare/trip"
)

const rule = "----------------------------------------"

// prompter asks for filter values on an interactive session until each
// answer is valid.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and reads answers until valid accepts one. It returns
// io.EOF when input ends first.
func (p *prompter) ask(question, hint string, valid func(string) bool) (string, error) {
	for {
		fmt.Fprintln(p.out, question)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
		if valid(answer) {
			return answer, nil
		}
		fmt.Fprintf(p.out, "Sorry, your input should be: %s\n", hint)
	}
}

// filters reads a city, month and day.
func (p *prompter) filters() (bikeshare.Query, error) {
	fmt.Fprintln(p.out, "Hello! Let's explore some US bike share data!")

	city, err := p.ask("Please enter the name of the city you want to analyze (chicago, new york city, washington):",
		"chicago, new york city or washington",
		func(s string) bool {
			_, ok := trip.ParseCity(s)
			return ok
		})
	if err != nil {
		return bikeshare.Query{}, err
	}

	month, err := p.ask("Please enter the month you want to analyze (january to june) or all:",
		strings.Join(query.Months, ", ")+" or all",
		func(s string) bool {
			_, err := query.ParseMonth(s)
			return err == nil
		})
	if err != nil {
		return bikeshare.Query{}, err
	}

	day, err := p.ask("Please enter the day of week you want to analyze or all:",
		strings.Join(query.Days, ", ")+" or all",
		func(s string) bool {
			_, err := query.ParseDay(s)
			return err == nil
		})
	if err != nil {
		return bikeshare.Query{}, err
	}

	fmt.Fprintln(p.out, rule)
	return bikeshare.Query{City: city, Month: month, Day: day}, nil
}

// restart asks whether to run another query. Anything but "yes" ends the
// session.
func (p *prompter) restart() bool {
	fmt.Fprintln(p.out, "\nWould you like to restart? Enter yes or no.")
	if !p.in.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.in.Text()), "yes")
}
