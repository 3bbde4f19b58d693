// Command hcompile builds H transducers from a YAML topology file and
// an ilabel-info listing, and applies the self-loop and
// transition-probability rewrites to transducers on disk.
//
// The context tree is the monophone tree derived from the topology, so
// the transition-id assignment is reproducible from the topology file
// alone across subcommands.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ieee0824/hcompile-go/fst"
	"github.com/ieee0824/hcompile-go/hmm"
	"github.com/ieee0824/hcompile-go/tree"
)

var (
	topoPath     string
	contextWidth int
	centralPos   int
)

func main() {
	root := &cobra.Command{
		Use:           "hcompile",
		Short:         "Compile HMM acoustic models into WFSTs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&topoPath, "topo", "", "path to YAML topology file (required)")
	root.PersistentFlags().IntVar(&contextWidth, "context-width", 3, "phonetic context window length")
	root.PersistentFlags().IntVar(&centralPos, "central-position", 1, "central phone position within the window")
	root.MarkPersistentFlagRequired("topo")

	root.AddCommand(makeHCmd(), addSelfLoopsCmd(), addTransProbsCmd(), ilabelMapCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hcompile: %v\n", err)
		os.Exit(1)
	}
}

func loadModel() (*tree.Monophone, *hmm.TransitionTable, error) {
	tf, err := os.Open(topoPath)
	if err != nil {
		return nil, nil, err
	}
	defer tf.Close()
	topo, err := hmm.ParseTopology(tf)
	if err != nil {
		return nil, nil, err
	}
	mono, err := tree.NewMonophone(topo, contextWidth, centralPos)
	if err != nil {
		return nil, nil, err
	}
	table, err := hmm.NewTransitionTable(topo, mono.PdfSequences())
	if err != nil {
		return nil, nil, err
	}
	return mono, table, nil
}

func loadIlabels(path string) ([][]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseIlabelInfo(f)
}

func loadFst(path string) (*fst.Fst, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fst.Load(f)
}

func saveFst(path string, g *fst.Fst) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseDisambig(spec string) ([]int32, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	syms := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad disambiguation symbol %q", p)
		}
		syms = append(syms, int32(n))
	}
	return syms, nil
}

func makeHCmd() *cobra.Command {
	var (
		ilabelPath       string
		outPath          string
		nontermOffset    int
		includeSelfLoops bool
	)
	cmd := &cobra.Command{
		Use:   "make-h",
		Short: "Build the H transducer from an ilabel-info listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			mono, table, err := loadModel()
			if err != nil {
				return err
			}
			info, err := loadIlabels(ilabelPath)
			if err != nil {
				return err
			}
			cfg := hmm.DefaultConfig()
			cfg.NontermPhonesOffset = nontermOffset
			cfg.IncludeSelfLoops = includeSelfLoops
			h, left, err := hmm.BuildHTransducer(info, mono, table, cfg)
			if err != nil {
				return err
			}
			if err := saveFst(outPath, h); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "H: %d states, %d arcs, %d entries\n", h.NumStates(), h.NumArcs(), len(info))
			for _, sym := range left {
				fmt.Println(sym)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ilabelPath, "ilabels", "", "path to ilabel-info listing (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output transducer path (required)")
	cmd.Flags().IntVar(&nontermOffset, "nonterm-phones-offset", -1, "first grammar-nonterminal phone id; -1 disables grammar decoding")
	cmd.Flags().BoolVar(&includeSelfLoops, "include-self-loops", false, "include self-loops during construction instead of deferring them")
	cmd.MarkFlagRequired("ilabels")
	cmd.MarkFlagRequired("out")
	return cmd
}

func addSelfLoopsCmd() *cobra.Command {
	var (
		inPath       string
		outPath      string
		disambigSpec string
		noWeights    bool
		notLoopFree  bool
	)
	cmd := &cobra.Command{
		Use:   "add-self-loops",
		Short: "Insert self-loops and rescale a self-loop-free transducer",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := loadModel()
			if err != nil {
				return err
			}
			disambig, err := parseDisambig(disambigSpec)
			if err != nil {
				return err
			}
			g, err := loadFst(inPath)
			if err != nil {
				return err
			}
			if err := hmm.AddSelfLoops(table, disambig, !notLoopFree, !noWeights, g); err != nil {
				return err
			}
			if err := saveFst(outPath, g); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "result: %d states, %d arcs\n", g.NumStates(), g.NumArcs())
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input transducer path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output transducer path (required)")
	cmd.Flags().StringVar(&disambigSpec, "disambig", "", "comma-separated sorted disambiguation symbols on the input side")
	cmd.Flags().BoolVar(&noWeights, "no-weights", false, "insert self-loops with weight one, without rescaling")
	cmd.Flags().BoolVar(&notLoopFree, "not-self-loop-free", false, "tolerate states that already carry self-loops")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func addTransProbsCmd() *cobra.Command {
	var (
		inPath       string
		outPath      string
		disambigSpec string
	)
	cmd := &cobra.Command{
		Use:   "add-trans-probs",
		Short: "Fold transition probabilities into a transducer's weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := loadModel()
			if err != nil {
				return err
			}
			disambig, err := parseDisambig(disambigSpec)
			if err != nil {
				return err
			}
			g, err := loadFst(inPath)
			if err != nil {
				return err
			}
			if err := hmm.AddTransitionProbs(table, disambig, g); err != nil {
				return err
			}
			return saveFst(outPath, g)
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input transducer path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output transducer path (required)")
	cmd.Flags().StringVar(&disambigSpec, "disambig", "", "comma-separated sorted disambiguation symbols on the input side")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func ilabelMapCmd() *cobra.Command {
	var ilabelPath string
	cmd := &cobra.Command{
		Use:   "ilabel-map",
		Short: "Print the canonicalized symbol mapping (new index, old index)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mono, table, err := loadModel()
			if err != nil {
				return err
			}
			info, err := loadIlabels(ilabelPath)
			if err != nil {
				return err
			}
			old2new, err := hmm.CanonicalizeSymbols(info, mono, table)
			if err != nil {
				return err
			}
			for i, old := range old2new {
				fmt.Printf("%d %d\n", i, old)
			}
			fmt.Fprintf(os.Stderr, "%d entries -> %d classes\n", len(info), len(old2new))
			return nil
		},
	}
	cmd.Flags().StringVar(&ilabelPath, "ilabels", "", "path to ilabel-info listing (required)")
	cmd.MarkFlagRequired("ilabels")
	return cmd
}
