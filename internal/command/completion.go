// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/evsetctl/internal/meta"
)

const bashCompletionScript = `# bash completion for evsetctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_evsetctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "reduce compare completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --output -o --titles -t --tldr --examples"

    case "$cmd" in
        reduce)
            local opts="$common --strategy -s --pool -p --synthetic -n --base --stride --seed --save --filter -f --metrics-file --aws-profile --aws-region --cache-way -w --rounds -r --threshold --ratio --traverse --max-backtracks --backtracking --no-backtracking --verbose --line-size --sets --ways --noise"
            ;;
        compare)
            local opts="$common --ignore --exit-code"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --strategy|-s)
            COMPREPLY=( $(compgen -W "naive optimistic gt gt-any binary all" -- "$cur") )
            return 0
            ;;
        --traverse)
            COMPREPLY=( $(compgen -W "0 1 2" -- "$cur") )
            return 0
            ;;
        --pool|-p|--save|--metrics-file)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* || "$cmd" != "compare" ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _evsetctl evsetctl
`

const zshCompletionScript = `#compdef evsetctl

_evsetctl() {
  local -a cmds
  cmds=(
    'reduce:reduce a candidate pool to a minimal eviction set'
    'compare:diff two saved reduction reports'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--examples[show usage examples]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'evsetctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    reduce)
      _arguments -C \
        $common \
        '*'{-s,--strategy}'[strategy]:strategy:(naive optimistic gt gt-any binary all)' \
        '(-p --pool)'{-p,--pool}'[candidate pool]:pool:_files' \
        '(-n --synthetic)'{-n,--synthetic}'[synthetic pool size]:size' \
        '--base[synthetic victim address]:address' \
        '--stride[synthetic stride]:bytes' \
        '--seed[random seed]:seed' \
        '--save[write report]:file:_files' \
        '(-f --filter)'{-f,--filter}'[show matching reports]:expression' \
        '--metrics-file[write metrics]:file:_files' \
        '--aws-profile[AWS profile]:profile' \
        '--aws-region[AWS region]:region' \
        '(-w --cache-way)'{-w,--cache-way}'[associativity]:ways' \
        '(-r --rounds)'{-r,--rounds}'[trials per query]:rounds' \
        '--threshold[miss latency threshold]:cycles' \
        '--ratio[vote ratio]:ratio' \
        '--traverse[traversal mode]:mode:(0 1 2)' \
        '--max-backtracks[retry bound]:count' \
        '(--backtracking --no-backtracking)'{--backtracking,--no-backtracking}'[bounded backtracking]' \
        '--verbose[log progress]' \
        '--line-size[simulated line size]:bytes' \
        '--sets[simulated sets]:sets' \
        '--ways[simulated associativity]:ways' \
        '--noise[trial error probability]:probability'
      ;;
    compare)
      _arguments -C \
        $common \
        '*--ignore[ignored field]:field' \
        '--exit-code[fail when reports differ]' \
        '1:left report:_files' \
        '2:right report:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _evsetctl evsetctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: evsetctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "evsetctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
