package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsim/pkg/genealogy"
)

var (
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listRefStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

type exploreOpts struct {
	sourceOpts
	pedigree int
	pid      int
}

func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse a pedigree interactively",
		Long: `Browse the members of one pedigree. The table shows each member's
meiotic and haplotype distance to the reference individual, which starts at
the pedigree root; press enter to make the highlighted member the reference.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, _, err := c.population(cmd.Context(), cmd, &opts.sourceOpts)
			if err != nil {
				return err
			}
			ped, err := selectPedigree(pop, opts.pedigree, opts.pid)
			if err != nil {
				return err
			}
			m, err := NewExploreModel(ped)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}

	addSourceFlags(cmd, &opts.sourceOpts)
	cmd.Flags().IntVar(&opts.pedigree, "pedigree", 0, "pedigree id to browse")
	cmd.Flags().IntVar(&opts.pid, "pid", 0, "browse the pedigree of this individual")
	cmd.MarkFlagsMutuallyExclusive("pedigree", "pid")
	return cmd
}

// =============================================================================
// ExploreModel - Interactive pedigree browser
// =============================================================================

// ExploreModel is the bubbletea model for browsing a pedigree.
type ExploreModel struct {
	Pop       *genealogy.Population
	Pedigree  *genealogy.Pedigree
	Members   []genealogy.Handle // oldest generation first, then by pid
	Reference genealogy.Handle
	Cursor    int
	Offset    int
	Height    int
	Err       error

	distances map[genealogy.Handle]int
}

// NewExploreModel creates a browser over ped with the root as reference.
func NewExploreModel(ped *genealogy.Pedigree) (ExploreModel, error) {
	pop := ped.Population()
	root, err := ped.Root()
	if err != nil {
		return ExploreModel{}, err
	}

	members := slices.Clone(ped.Members())
	slices.SortFunc(members, func(a, b genealogy.Handle) int {
		ia, _ := pop.Individual(a)
		ib, _ := pop.Individual(b)
		return cmp.Or(cmp.Compare(ib.Generation(), ia.Generation()), cmp.Compare(ia.PID(), ib.PID()))
	})

	m := ExploreModel{Pop: pop, Pedigree: ped, Members: members, Height: 15}
	return m.withReference(root), nil
}

// withReference makes h the reference and recomputes meiotic distances.
func (m ExploreModel) withReference(h genealogy.Handle) ExploreModel {
	dist, err := m.Pop.DistancesFrom(h)
	if err != nil {
		m.Err = err
		return m
	}
	m.Reference = h
	m.distances = dist
	m.Err = nil
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Members)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m = m.withReference(m.Members[m.Cursor])
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	ref, _ := m.Pop.Individual(m.Reference)
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Pedigree %d", m.Pedigree.ID())))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d members · reference %d", len(m.Members), ref.PID())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ set reference  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Members))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.row(i))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "PID", "Gen", "Sex", "Mother", "Meioses", "Hap dist").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case idx < len(m.Members) && m.Members[idx] == m.Reference:
				return listRefStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Members))))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError + " " + m.Err.Error()))
	}
	return b.String()
}

// row formats member i of the table.
func (m ExploreModel) row(i int) []string {
	h := m.Members[i]
	ind, _ := m.Pop.Individual(h)

	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	sex := "M"
	if ind.IsFemale() {
		sex = "F"
	}
	mother := "—"
	if mh := ind.Mother(); mh != genealogy.NoHandle {
		if mi, err := m.Pop.Individual(mh); err == nil {
			mother = strconv.Itoa(mi.PID())
		}
	}
	meioses := "—"
	if d, ok := m.distances[h]; ok {
		meioses = strconv.Itoa(d)
	}
	hap := "—"
	if d, err := m.Pop.HaplotypeDistance(m.Reference, h); err == nil {
		hap = strconv.Itoa(d)
	}
	return []string{cursor, strconv.Itoa(ind.PID()), strconv.Itoa(ind.Generation()), sex, mother, meioses, hap}
}
